package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	blockrec "github.com/arran4/golang-blockrec"
)

func init() {
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a RECORD file or a VCALENDAR",
		Long: `Check FILE and report the first error with its line number.

Kinds:
  auto      calendar if the file has BEGIN:VCALENDAR, records otherwise
  records   RECORD blocks
  events    bare VEVENT blocks
  calendar  VEVENT blocks inside VCALENDAR`,
		Args: cobra.ExactArgs(1),
		Run:  runValidate,
	}

	cmd.Flags().StringP("kind", "k", "auto", "Kind: auto, records, events, calendar")
	cmd.Flags().Bool("strict", false, "Fail on lines that are not KEY: VALUE")
	cmd.Flags().Bool("reject-unknown", false, "Fail on fields the schema does not declare")

	RootCmd.AddCommand(cmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")
	strict, _ := cmd.Flags().GetBool("strict")
	reject, _ := cmd.Flags().GetBool("reject-unknown")

	data, err := os.ReadFile(args[0])
	if err != nil {
		exitErr("read file", err)
	}
	kind = detectKind(kind, string(data))
	policy := cfg.Records
	if kind != "records" {
		policy = cfg.Events
	}
	ops := append(policyOps(policy, strict, reject), logger)
	if err := validate(os.Stdout, kind, string(data), ops...); err != nil {
		exitErr(args[0], err)
	}
}

func detectKind(kind, data string) string {
	if kind != "auto" {
		return kind
	}
	if strings.Contains(strings.ToUpper(data), "BEGIN:"+blockrec.KindCalendar) {
		return "calendar"
	}
	return "records"
}

func validate(w io.Writer, kind, data string, ops ...any) error {
	var (
		n        int
		warnings []blockrec.Warning
	)
	switch kind {
	case "records":
		res, err := blockrec.ParseRecords(data, ops...)
		if err != nil {
			return err
		}
		n, warnings = len(res.Records), res.Warnings
	case "events":
		res, err := blockrec.ParseRecords(data, append(ops, blockrec.VEventSchema())...)
		if err != nil {
			return err
		}
		n, warnings = len(res.Records), res.Warnings
	case "calendar":
		cal, err := blockrec.ParseCalendar(data, ops...)
		if err != nil {
			return err
		}
		n, warnings = len(cal.Events), cal.Warnings
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	for _, warning := range warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	fmt.Fprintf(w, "ok: %d %s, %d warnings\n", n, kind, len(warnings))
	return nil
}
