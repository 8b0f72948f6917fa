package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/synth-respondents-go/cmd/personagen/commands"
)

var rootCmd = &cobra.Command{
	Use:   "personagen",
	Short: "Synthetic survey respondents",
	Long: `Generate synthetic financial-survey respondents and collect their answers
to a questionnaire from a text-generation backend.`,
	SilenceUsage: true,
}

func init() {
	commands.AddPersistentFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(commands.PersonasCmd)
	rootCmd.AddCommand(commands.PromptCmd)
	rootCmd.AddCommand(commands.RunCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
