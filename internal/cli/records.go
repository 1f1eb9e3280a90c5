package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	blockrec "github.com/arran4/golang-blockrec"
	"github.com/arran4/golang-blockrec/internal/atomicfile"
	"github.com/arran4/golang-blockrec/internal/config"
)

func init() {
	cmd := &cobra.Command{
		Use:   "records FILE",
		Short: "Print RECORD blocks sorted by TIME",
		Long:  "Parse RECORD blocks from FILE and print them as a numbered report, earliest TIME first.",
		Args:  cobra.ExactArgs(1),
		Run:   runRecords,
	}

	cmd.Flags().StringP("output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().Bool("strict", false, "Fail on lines that are not KEY: VALUE")
	cmd.Flags().Bool("reject-unknown", false, "Fail on fields the schema does not declare")

	RootCmd.AddCommand(cmd)
}

func runRecords(cmd *cobra.Command, args []string) {
	out, _ := cmd.Flags().GetString("output")
	strict, _ := cmd.Flags().GetBool("strict")
	reject, _ := cmd.Flags().GetBool("reject-unknown")

	ops := append(policyOps(cfg.Records, strict, reject), logger)
	report, err := recordsReport(args[0], ops...)
	if err != nil {
		exitErr("records", err)
	}

	if out == "" {
		fmt.Print(report)
		return
	}
	if err := atomicfile.WriteFile(out, []byte(report), 0o644); err != nil {
		exitErr("write report", err)
	}
	logger.Info("wrote report", "path", out)
}

// policyOps merges the configured policy with command line switches. The
// switches win.
func policyOps(p config.PolicyConfig, strict, rejectUnknown bool) []any {
	ops := p.Ops()
	if strict {
		ops = append(ops, blockrec.LinesStrict)
	}
	if rejectUnknown {
		ops = append(ops, blockrec.UnrecognizedReject)
	}
	return ops
}

func recordsReport(path string, ops ...any) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	res, err := blockrec.ParseReader(f, ops...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	sorted, err := res.Sorted()
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if len(sorted) == 0 {
		return "", nil
	}
	return blockrec.FormatNumbered(sorted) + "\n", nil
}
