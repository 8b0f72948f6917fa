package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/synth-respondents-go/internal/services/orchestrator"
	"github.com/synth-respondents-go/internal/services/prompt"
	"github.com/synth-respondents-go/internal/services/questions"
)

var (
	promptQuestions string
	promptReviews   string
	promptPersona   int
	promptQuestion  int
	promptCount     int
	promptBackend   string
	promptJSON      bool
)

// PromptCmd renders the prompt one pair of a run would send
var PromptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Show the prompt for one persona and question",
	Long: `Render the generation request that the run command would send for persona i and
question j with the same seed and persona count. No backend is called.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd, false)
		if err != nil {
			return err
		}

		qs, err := questions.LoadFile(promptQuestions)
		if err != nil {
			return err
		}
		if promptPersona < 0 {
			return fmt.Errorf("persona index must not be negative")
		}
		if promptQuestion < 0 || promptQuestion >= len(qs) {
			return fmt.Errorf("question index %d out of range [0, %d)", promptQuestion, len(qs))
		}

		count := promptCount
		if count <= promptPersona {
			count = promptPersona + 1
		}
		gen, kb, suite := newGenerator()
		personas, err := generatePersonas(gen, cfg.Generation.Seed, count)
		if err != nil {
			return err
		}
		review, err := loadReviews(promptReviews)
		if err != nil {
			return err
		}

		orch := orchestrator.NewOrchestrator(nil, prompt.NewComposer(kb, suite, review), nil, nil, nil, log)
		opts := orchestrator.OptionsFromConfig(&cfg.Generation)
		opts.Backend = promptBackend
		if opts.Backend == "" {
			opts.Backend = cfg.Backends.Primary
		}

		pairID := orchestrator.PairID(promptPersona, promptQuestion, len(qs))
		req := orch.Request(&personas[promptPersona], qs[promptQuestion], promptQuestion, pairID, opts)
		if promptJSON {
			return writeJSON(cmd.OutOrStdout(), "-", req)
		}
		fmt.Fprintln(cmd.OutOrStdout(), req.Prompt)
		return nil
	},
}

func init() {
	PromptCmd.Flags().StringVarP(&promptQuestions, "questions", "q", "", "Questionnaire file (.json, .yaml)")
	PromptCmd.Flags().StringVar(&promptReviews, "reviews", "", "Review summary file (.json)")
	PromptCmd.Flags().IntVar(&promptPersona, "persona", 0, "Persona index")
	PromptCmd.Flags().IntVar(&promptQuestion, "question", 0, "Question index")
	PromptCmd.Flags().IntVarP(&promptCount, "count", "n", 0, "Persona count of the run being reproduced")
	PromptCmd.Flags().StringVar(&promptBackend, "backend", "", "Backend name recorded in the request")
	PromptCmd.Flags().BoolVar(&promptJSON, "json", false, "Print the full request as JSON")

	PromptCmd.MarkFlagRequired("questions")
}
