package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"caselens/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive case Q&A terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		answerer, err := newAnswerer()
		if err != nil {
			return err
		}
		m := tui.New(answerer)
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
