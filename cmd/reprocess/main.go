package main

import (
	"fmt"
	"os"

	"github.com/letieu/agent-directory/internal/app"
	"github.com/letieu/agent-directory/internal/database"
	"github.com/letieu/agent-directory/internal/reprocess"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	typeFlag    string
	idFlag      int64
	startIDFlag int64
	dryRunFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "reprocess",
	Short: "Re-run website and video extraction for stored listings",
	Long: `Fetches listings in id order, re-extracts their website and demo video,
and overwrites name, description, category, avatar and tags. When the video
yields data, key benefits, audience and features are replaced too.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&typeFlag, "type", "", "only process listings of this type (agent or tool)")
	rootCmd.Flags().Int64Var(&idFlag, "id", 0, "only process the listing with this id")
	rootCmd.Flags().Int64Var(&startIDFlag, "start-id", 0, "start from this listing id")
	rootCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "list what would be processed without calling any service")
}

func run(cmd *cobra.Command, _ []string) error {
	t, err := database.ParseItemType(typeFlag)
	if err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), !dryRunFlag)
	if err != nil {
		return err
	}
	defer a.Close()

	job := reprocess.New(a.DB, a.Pipeline, a.Logger.Named("reprocess"))
	summary, err := job.Run(cmd.Context(), reprocess.Options{
		Type:    t,
		ID:      idFlag,
		StartID: startIDFlag,
		DryRun:  dryRunFlag,
	})
	if err != nil {
		a.Logger.Error("reprocessing stopped", zap.Error(err))
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "found %d, updated %d, failed %d, skipped %d\n",
		summary.Found, summary.Updated, summary.Failed, summary.Skipped)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
