package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raphaelgruber/railvoice/internal/agent"
	"github.com/spf13/cobra"
)

var (
	voiceOutput string
	voiceJSON   bool
)

var voiceCmd = &cobra.Command{
	Use:   "voice <audio-file>",
	Short: "Answer a spoken PNR question end to end",
	Long: `Transcribe a spoken question, find the PNR, look up its status and
summarize it in the caller's language. With --output the summary is also
spoken to an MP3 file.

Examples:
  railvoice voice question.wav
  railvoice voice question.m4a -o reply.mp3`,
	Args: cobra.ExactArgs(1),
	RunE: runVoice,
}

func init() {
	voiceCmd.Flags().StringVarP(&voiceOutput, "output", "o", "", "write the spoken summary to this MP3 file")
	voiceCmd.Flags().BoolVar(&voiceJSON, "json", false, "print the result as JSON")
}

func runVoice(cmd *cobra.Command, args []string) error {
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

	result, err := a.CompleteFlow(ctx, audio, filepath.Base(args[0]), agent.FlowOptions{Speak: voiceOutput != ""})
	if tr := result.Transcript; tr != nil && !voiceJSON {
		fmt.Printf("Heard [%s]: %s\n", tr.Language, tr.Text)
	}
	if err != nil {
		return fmt.Errorf("%s", describeError(err))
	}

	if voiceJSON {
		return printJSON(os.Stdout, result.Report)
	}
	fmt.Println()
	printReport(os.Stdout, result.Report)

	if voiceOutput != "" {
		if len(result.Audio) == 0 {
			return fmt.Errorf("could not synthesize the summary")
		}
		if err := os.WriteFile(voiceOutput, result.Audio, 0o644); err != nil {
			return fmt.Errorf("write audio: %w", err)
		}
		fmt.Printf("\nWrote %s\n", voiceOutput)
	}
	return nil
}
