// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/researchflow/internal/chat"
	"github.com/pdiddy/researchflow/internal/session"
	"github.com/pdiddy/researchflow/internal/transcript"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive search conversation",
	Long: `Chat opens a conversation with the search service. Each line you type
is a new search; /more loads the next page of the latest answer, /save <n>
keeps an article in your favorites, and /write <file> saves the transcript.

Use --resume to continue a transcript written earlier.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().String("resume", "", "transcript file to continue")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg := loadConfig()
	repo, err := openFavorites(ctx, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	c := session.New(newBackendClient(cfg), repo, session.WithLogger(logger))

	var tf *transcript.File
	if path, _ := cmd.Flags().GetString("resume"); path != "" {
		tf, err = transcript.Read(path)
		if err != nil {
			return err
		}
		st, err := tf.State()
		if err != nil {
			return err
		}
		if err := c.Restore(st); err != nil {
			return err
		}
	}

	r := &chat.REPL{
		Controller: c,
		Favorites:  repo,
		Transcript: tf,
		In:         cmd.InOrStdin(),
		Out:        cmd.OutOrStdout(),
	}
	return r.Run(ctx)
}
