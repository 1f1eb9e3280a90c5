package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	blockrec "github.com/arran4/golang-blockrec"
	"github.com/arran4/golang-blockrec/internal/booking"
)

func init() {
	reserve := &cobra.Command{
		Use:   "reserve ATTENDEE START",
		Short: "Book a day and print the confirmation code",
		Long:  "Book START (YYYYMMDDTHHMMSS or YYYYMMDD) for ATTENDEE. Only one reservation per day is allowed.",
		Args:  cobra.ExactArgs(2),
		Run:   runReserve,
	}
	reserve.Flags().String("stamp", "", "Booking time (default: now, or START if that is earlier)")

	lookup := &cobra.Command{
		Use:   "lookup ATTENDEE",
		Short: "List upcoming reservations",
		Args:  cobra.ExactArgs(1),
		Run:   runLookup,
	}
	lookup.Flags().String("from", "", "Only show reservations on or after this time (default: now)")

	cancel := &cobra.Command{
		Use:   "cancel ATTENDEE CODE",
		Short: "Cancel a reservation",
		Args:  cobra.ExactArgs(2),
		Run:   runCancel,
	}

	available := &cobra.Command{
		Use:   "available",
		Short: "List the next free days",
		Args:  cobra.NoArgs,
		Run:   runAvailable,
	}
	available.Flags().String("from", "", "First day to consider (default: today)")
	available.Flags().IntP("count", "n", 0, "Number of days (default: search_days from config)")

	RootCmd.AddCommand(reserve, lookup, cancel, available)
}

// parseWhen reads a YYYYMMDDTHHMMSS token or a bare YYYYMMDD day. Empty means
// now.
func parseWhen(s string, now time.Time) (blockrec.DateTime, error) {
	switch len(s) {
	case 0:
		return blockrec.NewDateTime(now), nil
	case len("20060102"):
		s += "T000000"
	}
	return blockrec.ParseDateTime(s)
}

// defaultStamp is the booking time used when none is given: now, capped at
// start so a reservation earlier today is still valid.
func defaultStamp(start blockrec.DateTime, now time.Time) blockrec.DateTime {
	stamp := blockrec.NewDateTime(now)
	if stamp.After(start) {
		return start
	}
	return stamp
}

func runReserve(cmd *cobra.Command, args []string) {
	stampFlag, _ := cmd.Flags().GetString("stamp")
	now := time.Now()
	start, err := parseWhen(args[1], now)
	if err != nil {
		exitErr("start", err)
	}
	stamp := defaultStamp(start, now)
	if stampFlag != "" {
		if stamp, err = parseWhen(stampFlag, now); err != nil {
			exitErr("stamp", err)
		}
	}

	b, err := openBook()
	if err != nil {
		exitErr("open calendar", err)
	}
	code, err := b.Reserve(args[0], start, stamp)
	if err != nil {
		exitErr("reserve", err)
	}
	if err := b.Save(); err != nil {
		exitErr("save calendar", err)
	}
	fmt.Println(code)
}

func runLookup(cmd *cobra.Command, args []string) {
	fromFlag, _ := cmd.Flags().GetString("from")
	from, err := parseWhen(fromFlag, time.Now())
	if err != nil {
		exitErr("from", err)
	}

	b, err := openBook()
	if err != nil {
		exitErr("open calendar", err)
	}
	rs, err := b.Lookup(args[0], from)
	if err != nil {
		exitErr("lookup", err)
	}
	printReservations(cmd.OutOrStdout(), args[0], rs)
}

func printReservations(w io.Writer, attendee string, rs []booking.Reservation) {
	if len(rs) == 0 {
		fmt.Fprintf(w, "No reservations found for %s.\n", attendee)
		return
	}
	for _, r := range rs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Start, r.Start.Humanize(), r.Code)
	}
}

func runCancel(cmd *cobra.Command, args []string) {
	b, err := openBook()
	if err != nil {
		exitErr("open calendar", err)
	}
	if err := b.Cancel(args[0], args[1]); err != nil {
		exitErr("cancel", err)
	}
	if err := b.Save(); err != nil {
		exitErr("save calendar", err)
	}
	fmt.Println("Reservation cancelled.")
}

func runAvailable(cmd *cobra.Command, args []string) {
	fromFlag, _ := cmd.Flags().GetString("from")
	n, _ := cmd.Flags().GetInt("count")
	if n <= 0 {
		n = cfg.SearchDays
	}
	from, err := parseWhen(fromFlag, time.Now())
	if err != nil {
		exitErr("from", err)
	}

	b, err := openBook()
	if err != nil {
		exitErr("open calendar", err)
	}
	for _, d := range b.NextAvailable(from, n) {
		fmt.Fprintln(cmd.OutOrStdout(), d.Date())
	}
}
