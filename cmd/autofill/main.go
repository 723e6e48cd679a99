package main

import (
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/letieu/agent-directory/internal/app"
	"github.com/letieu/agent-directory/internal/extraction"
	"github.com/spf13/cobra"
)

var (
	websiteFlag string
	videoFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "autofill",
	Short: "Run the extraction pipeline once and print the draft",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := app.New(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		draft, err := a.Pipeline.Run(cmd.Context(), extraction.Input{WebsiteURL: websiteFlag, VideoURL: videoFlag})
		if err != nil {
			return err
		}

		pp.Print(draft)
		if err := draft.Video.Err(); err != nil && videoFlag != "" {
			pp.Println("video step:", err.Error())
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&websiteFlag, "website", "", "product website url")
	rootCmd.Flags().StringVar(&videoFlag, "video", "", "optional YouTube demo url")
	rootCmd.MarkFlagRequired("website")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
