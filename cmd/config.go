// cmd/config.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
	Long: `View and modify configuration settings for soundmatch.

Settings are stored in ~/.soundmatch/config.yaml`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration key to a specific value.

Available keys:
  identify.min_confidence    - identification confidence threshold (default: 0.5)
  enrich.provider_timeout    - per-provider call timeout (default: 15s)
  synthesis.timeout          - AI synthesis call timeout (default: 30s)
  catalog.min_similarity     - similar-track score floor (default: 0.3)
  catalog.limit              - maximum similar tracks returned (default: 10)
  api.musicbrainz.rate_limit - MusicBrainz requests per second (default: 1)
  api.musicbrainz.user_agent - User agent for MusicBrainz requests
  api.discogs.rate_limit     - Discogs requests per second (default: 1)
  api.gemini.model           - Gemini model name (default: gemini-1.5-flash)

Examples:
  soundmatch config set identify.min_confidence 0.6
  soundmatch config set catalog.limit 5`,
	Args: cobra.ExactArgs(2),
	Run:  runConfigSet,
}

var configShowCmd = &cobra.Command{
	Use:   "show [key]",
	Short: "Show configuration values",
	Long: `Display current configuration settings. If no key is specified,
shows all settings.

Examples:
  soundmatch config show
  soundmatch config show catalog.limit`,
	Args: cobra.MaximumNArgs(1),
	Run:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) {
	key := args[0]
	value := args[1]

	viper.Set(key, value)

	err := viper.WriteConfig()
	if err != nil {
		// Try to write to default location if config doesn't exist
		err = viper.SafeWriteConfig()
		if err != nil {
			fmt.Printf("Error writing config: %v\n", err)
			return
		}
	}

	fmt.Printf("Set %s = %v\n", key, viper.Get(key))
}

func runConfigShow(cmd *cobra.Command, args []string) {
	if len(args) == 1 {
		// Show specific key
		key := args[0]
		value := viper.Get(key)
		if value == nil {
			fmt.Printf("Key '%s' is not set\n", key)
			return
		}
		fmt.Printf("%s = %v\n", key, value)
	} else {
		// Show all settings
		fmt.Println("Current configuration:")
		fmt.Printf("Config file: %s\n\n", viper.ConfigFileUsed())

		keys := []string{
			"identify.min_confidence",
			"enrich.provider_timeout",
			"synthesis.timeout",
			"catalog.min_similarity",
			"catalog.limit",
			"api.musicbrainz.rate_limit",
			"api.musicbrainz.user_agent",
			"api.discogs.rate_limit",
			"api.gemini.model",
		}

		for _, key := range keys {
			fmt.Printf("%-30s = %v\n", key, viper.Get(key))
		}
	}
}
