package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/pitchdeck-be/config"
	"github.com/tieubaoca/pitchdeck-be/service"
	"github.com/tieubaoca/pitchdeck-be/utils"
)

const verifySampleText = "This is a test pitch deck content."

var verifyAICmd = &cobra.Command{
	Use:   "verify-ai",
	Short: "Show the active analysis provider and run one sample summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger, err := utils.NewLogger(cfg.Log)
		if err != nil {
			return err
		}
		defer logger.Sync()

		ai, err := service.NewAIService(cmd.Context(), cfg.AI, logger)
		if err != nil {
			return fmt.Errorf("failed to create AI service: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "provider:", ai.Provider())
		if ai.Provider() == service.ProviderNone {
			fmt.Fprintln(out, "no API key set, skipping live API test")
			return nil
		}

		summary := service.NewDeckAnalyst(ai, cfg.AI.RequestTimeout, cfg.AI.MaxInputChars, logger).
			SummarizeDeck(cmd.Context(), verifySampleText)
		encoded, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Fprintln(out, "summary result:", string(encoded))
		if len(summary) == 0 {
			return fmt.Errorf("%s returned an empty summary", ai.Provider())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyAICmd)
}
