package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	speakLanguage string
	speakOutput   string
)

var speakCmd = &cobra.Command{
	Use:   "speak <text...>",
	Short: "Synthesize text to an MP3 file",
	Long: `Synthesize text to an MP3 file.

Examples:
  railvoice speak "Your ticket is confirmed" -o reply.mp3
  railvoice speak "आपकी टिकट कन्फर्म है" --language hindi -o reply.mp3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSpeak,
}

func init() {
	speakCmd.Flags().StringVarP(&speakLanguage, "language", "l", "english", "voice language")
	speakCmd.Flags().StringVarP(&speakOutput, "output", "o", "response.mp3", "output file")
}

func runSpeak(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := getAgent(ctx)
	if err != nil {
		return err
	}
	audio, err := a.Speak(ctx, strings.Join(args, " "), speakLanguage)
	if err != nil {
		return err
	}
	if err := os.WriteFile(speakOutput, audio, 0o644); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", speakOutput, len(audio))
	return nil
}
