/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/pitchdeck-be/service"
	"github.com/tieubaoca/pitchdeck-be/types"
	"go.uber.org/zap"
)

// uploadDeckCmd represents the upload-deck command
var uploadDeckCmd = &cobra.Command{
	Use:   "upload-deck",
	Short: "Register a local PDF as a new deck",
	Long: `Copies a PDF into the upload directory and creates an unprocessed deck for it.
Pass --startup to attach it to an existing startup, or --name to create one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath, _ := cmd.Flags().GetString("file")
		startupID, _ := cmd.Flags().GetUint("startup")
		name, _ := cmd.Flags().GetString("name")
		if filePath == "" {
			return errors.New("--file is required")
		}
		if startupID == 0 && name == "" {
			return errors.New("either --startup or --name is required")
		}

		ctx := cmd.Context()
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if startupID == 0 {
			startup, err := service.NewStartupService(a.startups).CreateStartup(ctx, types.CreateStartupRequest{Name: name})
			if err != nil {
				return fmt.Errorf("failed to create startup: %w", err)
			}
			startupID = startup.ID
			a.logger.Info("created startup", zap.Uint("startup_id", startupID), zap.String("name", startup.Name))
		}

		fileService, err := service.NewFileService(a.cfg.UploadDir, a.cfg.MaxUploadBytes)
		if err != nil {
			return err
		}
		deck, err := service.NewDeckService(a.decks, a.startups, fileService).ImportDeck(ctx, startupID, filePath)
		if err != nil {
			return fmt.Errorf("failed to upload deck: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created deck %d for startup %d at %s\n", deck.ID, startupID, deck.FilePath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadDeckCmd)
	uploadDeckCmd.Flags().StringP("file", "f", "", "Path to the PDF to upload")
	uploadDeckCmd.Flags().UintP("startup", "s", 0, "Existing startup id")
	uploadDeckCmd.Flags().StringP("name", "n", "", "Create a startup with this name first")
}
