package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run only the deck scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		return a.newScheduler(pipeline).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
