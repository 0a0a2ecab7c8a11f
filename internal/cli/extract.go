package cli

import (
	"fmt"
	"strings"

	"github.com/raphaelgruber/railvoice/internal/transcript"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <text...>",
	Short: "Find a PNR in free text",
	Long: `Find a ten-digit PNR in free text, such as a speech transcript.

Spoken digits in English, Hindi and other Indian languages are recognized.

Examples:
  railvoice extract "my pnr is two six zero eight two nine zero six eight six"
  railvoice extract मेरा पीएनआर दो छह शून्य आठ दो नौ शून्य छह आठ छह है`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	pnr, err := transcript.ExtractPNR(text)
	if err != nil {
		return fmt.Errorf("%s", describeError(err))
	}
	if verbose {
		fmt.Printf("normalized: %s\n", strings.Join(strings.Fields(transcript.Prepare(text)), " "))
	}
	fmt.Println(pnr)
	return nil
}
