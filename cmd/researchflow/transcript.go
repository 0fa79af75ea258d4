// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/researchflow/internal/session"
	"github.com/pdiddy/researchflow/internal/transcript"
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Inspect saved chat transcripts",
}

var transcriptShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print a saved conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := transcript.Read(args[0])
		if err != nil {
			return err
		}
		st, err := f.State()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "session %s, saved %s\n", f.SessionID, f.SavedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(out, "filters: sort %s, years %d-%d, open access %t\n",
			st.Filters.SortBy, st.Filters.YearFrom, st.Filters.YearTo, st.Filters.OpenAccess)
		for _, t := range st.Turns {
			session.FormatTurn(out, t)
		}
		return nil
	},
}

func init() {
	transcriptCmd.AddCommand(transcriptShowCmd)
	rootCmd.AddCommand(transcriptCmd)
}
