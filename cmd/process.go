package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/pitchdeck-be/service"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run one scheduler tick, or one deck with --deck, and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		deckID, _ := cmd.Flags().GetUint("deck")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		pipeline, err := a.newPipeline(ctx, nil)
		if err != nil {
			return err
		}

		if deckID == 0 {
			report := a.newScheduler(pipeline).Tick(ctx)
			out, _ := json.MarshalIndent(report, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if report.Failed > 0 || report.ExtractionFailed > 0 {
				return fmt.Errorf("%d deck(s) failed", report.Failed+report.ExtractionFailed)
			}
			return nil
		}

		deck, err := a.decks.GetDeck(ctx, deckID)
		if err != nil {
			return fmt.Errorf("failed to load deck %d: %w", deckID, err)
		}
		outcome := pipeline.Process(ctx, deck)
		fmt.Fprintf(cmd.OutOrStdout(), "deck %d: %s\n", deckID, outcome)
		if outcome == service.OutcomeFailed || outcome == service.OutcomeExtractionFailed {
			return fmt.Errorf("deck %d was not completed", deckID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().Uint("deck", 0, "process only this deck id")
}
