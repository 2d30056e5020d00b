package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript <url|id>",
	Short: "Resolve a transcript through the full strategy cascade",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")
		ts, _ := cmd.Flags().GetBool("timestamps")
		minChars, _ := cmd.Flags().GetInt("min-chars")

		r := transcript.FromConfig(*engine.Cfg)
		res, err := r.Resolve(cmd.Context(), args[0], transcript.Options{
			Language:   lang,
			Timestamps: ts,
			MinChars:   minChars,
		})
		if err != nil {
			var te *transcript.Error
			if errors.As(err, &te) {
				for _, a := range te.Attempts {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %-22s %-16s %5d chars %s\n", a.Strategy, a.ErrorKind, a.Chars, a.Elapsed)
				}
			}
			return cliError(err)
		}
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), res)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "source=%s language=%s chars=%d\n", res.Source, res.Language, len([]rune(res.Text)))
		fmt.Fprintln(cmd.OutOrStdout(), res.Text)
		return nil
	},
}

func init() {
	transcriptCmd.Flags().StringP("lang", "l", "", "Preferred language prefix (default PREFERRED_LANGUAGE)")
	transcriptCmd.Flags().BoolP("timestamps", "t", false, "Prefix each segment with [MM:SS]")
	transcriptCmd.Flags().Int("min-chars", 0, "Sufficiency threshold (default MIN_TRANSCRIPT_CHARS)")
	rootCmd.AddCommand(transcriptCmd)
}
