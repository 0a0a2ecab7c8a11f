package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var transcribeJSON bool

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio-file>",
	Short: "Transcribe an audio file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranscribe,
}

func init() {
	transcribeCmd.Flags().BoolVar(&transcribeJSON, "json", false, "print the result as JSON")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	audio, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read audio: %w", err)
	}

	a, err := getAgent(ctx)
	if err != nil {
		return err
	}
	tr, err := a.Transcribe(ctx, audio, filepath.Base(args[0]))
	if err != nil {
		return err
	}

	if transcribeJSON {
		return printJSON(os.Stdout, tr)
	}
	fmt.Printf("[%s] %s\n", tr.Language, tr.Text)
	return nil
}
