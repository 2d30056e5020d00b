package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/youtube"
)

var tracksCmd = &cobra.Command{
	Use:   "tracks <url|id>",
	Short: "List the caption tracks of a video in preference order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := youtube.DeriveVideoID(args[0])
		if err != nil {
			return err
		}
		lang, _ := cmd.Flags().GetString("lang")
		if lang == "" {
			lang = engine.Cfg.PreferredLanguage
		}
		yt := youtube.NewClient(nil, lang)
		tracks, err := youtube.NewLocator(yt, nil, nil).Locate(cmd.Context(), id)
		if err != nil {
			return err
		}
		tracks = youtube.OrderTracks(tracks, lang)
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), tracks)
		}
		for _, t := range tracks {
			kind := "manual"
			if t.IsAutoGenerated {
				kind = "auto"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-6s %s\n", t.LanguageCode, kind, t.Name)
		}
		return nil
	},
}

func init() {
	tracksCmd.Flags().StringP("lang", "l", "", "Language prefix used for ordering")
	rootCmd.AddCommand(tracksCmd)
}
