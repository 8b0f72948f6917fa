package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	personasCount  int
	personasOutput string
)

// PersonasCmd generates personas and prints them as JSON
var PersonasCmd = &cobra.Command{
	Use:   "personas",
	Short: "Generate personas",
	Long:  `Generate synthetic respondents with the run seed and write them as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd, false)
		if err != nil {
			return err
		}

		gen, _, _ := newGenerator()
		personas, err := generatePersonas(gen, cfg.Generation.Seed, personasCount)
		if err != nil {
			return err
		}

		log.WithFields(logrus.Fields{
			"count": len(personas),
			"seed":  cfg.Generation.Seed,
		}).Info("Personas generated")

		return writeJSON(cmd.OutOrStdout(), personasOutput, personas)
	},
}

func init() {
	PersonasCmd.Flags().IntVarP(&personasCount, "count", "n", 10, "Number of personas")
	PersonasCmd.Flags().StringVarP(&personasOutput, "output", "o", "-", "Output file (- for stdout)")
}
