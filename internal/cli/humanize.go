package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	blockrec "github.com/arran4/golang-blockrec"
)

func init() {
	cmd := &cobra.Command{
		Use:     "humanize TOKEN...",
		Short:   "Print YYYYMMDDTHHMMSS tokens as dates",
		Example: "  blockrec humanize 19980118T230000\n  January 18, 1998, at 11 PM",
		Args:    cobra.MinimumNArgs(1),
		Run:     runHumanize,
	}

	RootCmd.AddCommand(cmd)
}

func runHumanize(cmd *cobra.Command, args []string) {
	if err := humanize(os.Stdout, args); err != nil {
		exitErr("humanize", err)
	}
}

func humanize(w io.Writer, tokens []string) error {
	for _, token := range tokens {
		dt, err := blockrec.ParseDateTime(token)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, dt.Humanize())
	}
	return nil
}
