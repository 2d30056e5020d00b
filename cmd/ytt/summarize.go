package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <url|id>",
	Short: "Summarize a video with the configured LLM (LLM_API_KEY)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in engine.SummarizeInput
		in.VideoID = args[0]
		in.Language, _ = cmd.Flags().GetString("lang")
		in.Settings.Length, _ = cmd.Flags().GetString("length")
		in.Settings.Format, _ = cmd.Flags().GetString("format")
		in.Settings.Language, _ = cmd.Flags().GetString("output-language")

		svc := &toolutil.Service{
			Resolver:   transcript.FromConfig(*engine.Cfg),
			Summarizer: engine.DefaultSummarizer(),
		}
		out, err := svc.Summarize(cmd.Context(), in)
		if err != nil {
			return cliError(err)
		}
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), out)
		}
		w := cmd.OutOrStdout()
		if out.Summary.Title != "" {
			fmt.Fprintln(w, out.Summary.Title)
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, out.Summary.TLDR)
		for _, p := range out.Summary.KeyPoints {
			fmt.Fprintln(w, "  -", p)
		}
		return nil
	},
}

func init() {
	summarizeCmd.Flags().StringP("lang", "l", "", "Transcript language prefix")
	summarizeCmd.Flags().String("length", "medium", "short, medium or long")
	summarizeCmd.Flags().String("format", "bullets", "bullets, detailed or paragraph")
	summarizeCmd.Flags().String("output-language", "", "Summary language (default English)")
	rootCmd.AddCommand(summarizeCmd)
}
