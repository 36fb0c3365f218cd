package commands

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	apiKey    string
	api       *client
)

func Execute() error {
	root := &cobra.Command{
		Use:          "fitbuddy",
		Short:        "Log workouts against a running FitBuddy server",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if serverURL == "" {
				serverURL = os.Getenv("FITBUDDY_URL")
			}
			if serverURL == "" {
				serverURL = "http://127.0.0.1:8080"
			}
			if apiKey == "" {
				apiKey = os.Getenv("FITBUDDY_AUTH_API_KEY")
			}
			api = newClient(serverURL, apiKey)
			return nil
		},
	}

	_ = godotenv.Load()

	root.PersistentFlags().StringVar(&serverURL, "server", "", "FitBuddy server URL (default $FITBUDDY_URL or http://127.0.0.1:8080)")
	root.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key (default $FITBUDDY_AUTH_API_KEY)")

	root.AddCommand(
		loginCmd(), logoutCmd(), whoamiCmd(),
		todayCmd(), weekCmd(), exercisesCmd(), surveyCmd(),
		sessionCmd(), heatmapCmd(), historyCmd(),
		progressCmd(),
	)
	return root.Execute()
}
