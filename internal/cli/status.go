package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raphaelgruber/railvoice/internal/agent"
	"github.com/raphaelgruber/railvoice/internal/client"
	"github.com/raphaelgruber/railvoice/internal/models"
	"github.com/spf13/cobra"
)

var (
	statusLanguage  string
	statusJSON      bool
	statusNoSummary bool
	statusServer    string
)

var statusCmd = &cobra.Command{
	Use:   "status <pnr>",
	Short: "Look up the booking status of a PNR",
	Long: `Look up the booking status of a ten-digit PNR.

The status API is tried first; when it misses, a headless browser submits
the PNR on the public status website and the page is parsed.

Examples:
  railvoice status 2608290686
  railvoice status 2608290686 --language hindi
  railvoice status 2608290686 --json --no-summary
  railvoice status 2608290686 --server http://localhost:8000`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusLanguage, "language", "l", "english", "summary language")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the result as JSON")
	statusCmd.Flags().BoolVar(&statusNoSummary, "no-summary", false, "skip the spoken-style summary")
	statusCmd.Flags().StringVar(&statusServer, "server", "", "ask a running railvoice server instead of resolving locally")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	pnr := strings.TrimSpace(args[0])

	if cmd.Flags().Changed("server") {
		return runRemoteStatus(ctx, pnr)
	}

	a, err := getAgent(ctx)
	if err != nil {
		return err
	}

	var report *agent.StatusReport
	if !statusJSON && isTerminal(os.Stderr) {
		report, err = RunStatusProgress(ctx, a, pnr, statusLanguage, !statusNoSummary)
	} else {
		report, err = a.Lookup(ctx, pnr, statusLanguage, !statusNoSummary, nil)
	}
	if err != nil {
		return fmt.Errorf("%s", describeError(err))
	}

	if statusJSON {
		return printJSON(os.Stdout, report)
	}
	printReport(os.Stdout, report)
	return nil
}

func runRemoteStatus(ctx context.Context, pnr string) error {
	c := client.New(statusServer)

	var (
		res *client.StatusResult
		err error
	)
	if !statusJSON && isTerminal(os.Stderr) {
		res, err = RunRemoteStatusProgress(ctx, c, pnr, statusLanguage, !statusNoSummary)
	} else {
		res, err = c.Status(ctx, pnr, statusLanguage, !statusNoSummary)
	}
	if err != nil {
		return err
	}

	if statusJSON {
		return printJSON(os.Stdout, res)
	}
	printRemoteResult(os.Stdout, res)
	return nil
}

// printRemoteResult writes a server answer. The payload is shown as
// indented JSON since its shape depends on the tier that answered.
func printRemoteResult(w io.Writer, res *client.StatusResult) {
	fmt.Fprintf(w, "PNR %s (via %s)\n", res.PNR, res.Source)
	var data bytes.Buffer
	if err := json.Indent(&data, res.PNRData, "  ", "  "); err == nil {
		fmt.Fprintf(w, "  %s\n", data.String())
	}
	if res.Degraded {
		fmt.Fprintln(w, "  (little detail could be recovered from the status page)")
	}
	if res.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", res.Summary)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printReport writes a human-readable ticket.
func printReport(w io.Writer, report *agent.StatusReport) {
	t := report.Ticket
	fmt.Fprintf(w, "PNR %s (via %s)\n", report.PNR, report.Source)
	if t != nil {
		if t.TrainNumber != nil || t.TrainName != nil {
			fmt.Fprintf(w, "  Train:   %s %s\n", deref(t.TrainNumber), deref(t.TrainName))
		}
		if t.FromStation != nil || t.ToStation != nil {
			fmt.Fprintf(w, "  Route:   %s → %s\n", deref(t.FromStation), deref(t.ToStation))
		}
		if t.DateOfJourney != nil {
			fmt.Fprintf(w, "  Date:    %s\n", *t.DateOfJourney)
		}
		if t.TravelClass != nil {
			fmt.Fprintf(w, "  Class:   %s\n", *t.TravelClass)
		}
		if t.ChartStatus != models.ChartUnknown {
			fmt.Fprintf(w, "  Chart:   %s\n", t.ChartStatus)
		}
		for _, p := range t.Passengers {
			line := fmt.Sprintf("  P%-2d     %s (booked %s)", p.SerialNumber, p.CurrentStatus, p.BookingStatus)
			if p.Coach != nil {
				line += " coach " + *p.Coach
			}
			fmt.Fprintln(w, line)
		}
	}
	if report.Degraded {
		fmt.Fprintln(w, "  (little detail could be recovered from the status page)")
	}
	if report.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", report.Summary)
	}
}

func deref(s *string) string {
	if s == nil {
		return "?"
	}
	return *s
}
