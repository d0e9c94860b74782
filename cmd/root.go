// cmd/root.go
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "soundmatch",
	Short: "Music identification and royalty-free similarity search",
	Long: `A CLI tool that identifies a music track from an audio file, a
title/artist pair or a free-text query, enriches the identification with
metadata from several independent sources, and suggests similar
royalty-free tracks from the Jamendo catalog.`,
	Version: "0.1.0",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.soundmatch/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	// API keys live in .env, everything tunable in the viper config.
	godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".soundmatch")
		os.MkdirAll(configDir, 0755)

		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Println("Using config file:", viper.ConfigFileUsed())
		}
	}

	// Named, centrally configured cutoffs. Treat the values as tunable.
	viper.SetDefault("identify.min_confidence", 0.5)
	viper.SetDefault("enrich.provider_timeout", "15s")
	viper.SetDefault("synthesis.timeout", "30s")
	viper.SetDefault("catalog.min_similarity", 0.3)
	viper.SetDefault("catalog.limit", 10)
	viper.SetDefault("api.musicbrainz.rate_limit", 1.0)
	viper.SetDefault("api.musicbrainz.user_agent", "soundmatch/0.1.0 (https://github.com/cerberussg/soundmatch)")
	viper.SetDefault("api.discogs.rate_limit", 1.0)
	viper.SetDefault("api.gemini.model", "gemini-1.5-flash")
}

// newLogger builds the slog logger the pipeline components share.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
