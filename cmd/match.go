// cmd/match.go
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cerberussg/soundmatch/pkg/audiofile"
	"github.com/cerberussg/soundmatch/pkg/catalog"
	"github.com/cerberussg/soundmatch/pkg/catalog/jamendo"
	"github.com/cerberussg/soundmatch/pkg/enricher"
	"github.com/cerberussg/soundmatch/pkg/enricher/discogs"
	"github.com/cerberussg/soundmatch/pkg/enricher/musicbrainz"
	"github.com/cerberussg/soundmatch/pkg/enricher/musixmatch"
	"github.com/cerberussg/soundmatch/pkg/enricher/wikipedia"
	"github.com/cerberussg/soundmatch/pkg/identify"
	"github.com/cerberussg/soundmatch/pkg/identify/acoustid"
	spotifyid "github.com/cerberussg/soundmatch/pkg/identify/spotify"
	"github.com/cerberussg/soundmatch/pkg/pipeline"
	"github.com/cerberussg/soundmatch/pkg/synthesis"
	"github.com/cerberussg/soundmatch/pkg/synthesis/gemini"
)

var matchCmd = &cobra.Command{
	Use:   "match [audio file | search query]",
	Short: "Identify a track and find similar royalty-free music",
	Long: `Identify a track from an audio file, a --title/--artist pair or a
free-text query, enrich it with metadata from MusicBrainz, Musixmatch,
Discogs and Wikipedia, and suggest similar royalty-free tracks from
Jamendo.

Examples:
  soundmatch match ~/Music/track.mp3
  soundmatch match --title "Inner City Life" --artist "Goldie"
  soundmatch match "goldie inner city life"
  soundmatch match ~/Music/track.mp3 --json --limit 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMatch,
}

var (
	titleFlag   string
	artistFlag  string
	limitFlag   int
	jsonOutput  bool
	matchWithin time.Duration
)

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVar(&titleFlag, "title", "", "track title (use together with --artist)")
	matchCmd.Flags().StringVar(&artistFlag, "artist", "", "artist name (use together with --title)")
	matchCmd.Flags().IntVar(&limitFlag, "limit", 0, "maximum similar tracks to return (default from config)")
	matchCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full pipeline result as JSON")
	matchCmd.Flags().DurationVar(&matchWithin, "timeout", 2*time.Minute, "overall deadline for the whole pipeline")
}

func runMatch(cmd *cobra.Command, args []string) error {
	logger := newLogger().With("request_id", uuid.NewString())

	input, err := buildInput(cmd.Context(), args, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), matchWithin)
	defer cancel()

	controller, err := buildPipeline(ctx, logger)
	if err != nil {
		return err
	}

	result, err := controller.Process(ctx, input)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotIdentified) {
			return fmt.Errorf("no track matched the given input")
		}
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(result)
	return nil
}

// buildInput turns the command line into an identification signal. A
// single positional argument is an audio file if it exists on disk,
// otherwise a free-text query.
func buildInput(ctx context.Context, args []string, logger *slog.Logger) (identify.Input, error) {
	var in identify.Input

	if titleFlag != "" && artistFlag != "" {
		in.Title = titleFlag
		in.Artist = artistFlag
		return in, nil
	}
	if len(args) == 0 {
		return in, fmt.Errorf("provide an audio file, a query, or --title and --artist")
	}

	arg := args[0]
	info, err := os.Stat(arg)
	if err != nil || info.IsDir() {
		in.Query = arg
		return in, nil
	}

	// Audio file: embedded tags give a precise title/artist pair, the
	// chromaprint fingerprint (when fpcalc is available) gives the
	// strongest identification signal.
	if tags, err := audiofile.ReadTags(arg); err == nil {
		in.Title = tags.Title
		in.Artist = tags.Artist
		logger.Debug("embedded tags found", "title", tags.Title, "artist", tags.Artist)
	} else {
		logger.Debug("no embedded tags", "file", arg, "error", err)
	}

	if fp, err := audiofile.ComputeFingerprint(ctx, arg); err == nil {
		in.Fingerprint = fp.Fingerprint
		in.Duration = int(fp.Duration)
		logger.Debug("fingerprint computed", "duration", in.Duration)
	} else {
		logger.Debug("fingerprint unavailable", "error", err)
	}

	if in.Fingerprint == "" && in.Title == "" {
		return in, fmt.Errorf("%s has no embedded tags and fingerprinting failed", arg)
	}
	return in, nil
}

// buildPipeline wires every configured collaborator into a controller.
// Providers without credentials are simply left out of their stage.
func buildPipeline(ctx context.Context, logger *slog.Logger) (*pipeline.Controller, error) {
	// Fallback order: fingerprint, precise title+artist, fuzzy free text.
	var idProviders []identify.Provider
	if key := os.Getenv("ACOUSTID_API_KEY"); key != "" {
		idProviders = append(idProviders, acoustid.New(key))
	}
	if id, secret := os.Getenv("SPOTIFY_ID"), os.Getenv("SPOTIFY_SECRET"); id != "" && secret != "" {
		client := spotifyid.NewClient(ctx, id, secret)
		idProviders = append(idProviders, spotifyid.New(client), spotifyid.NewFuzzy(client))
	}
	if len(idProviders) == 0 {
		return nil, fmt.Errorf("no identification providers configured (set ACOUSTID_API_KEY and/or SPOTIFY_ID + SPOTIFY_SECRET)")
	}

	chain := identify.NewChain(idProviders,
		viper.GetFloat64("identify.min_confidence"),
		logger.With("component", "identify"))

	providerTimeout := viper.GetDuration("enrich.provider_timeout")
	var enrichers []enricher.Provider
	if key := os.Getenv("MUSIXMATCH_API_KEY"); key != "" {
		enrichers = append(enrichers, musixmatch.New(key, musixmatch.WithTimeout(providerTimeout)))
	}
	enrichers = append(enrichers, musicbrainz.New(
		musicbrainz.WithUserAgent(viper.GetString("api.musicbrainz.user_agent")),
		musicbrainz.WithRateLimit(viper.GetFloat64("api.musicbrainz.rate_limit")),
		musicbrainz.WithTimeout(providerTimeout)))
	if key, secret := os.Getenv("DISCOGS_KEY"), os.Getenv("DISCOGS_SECRET"); key != "" && secret != "" {
		enrichers = append(enrichers, discogs.New(key, secret,
			discogs.WithRateLimit(viper.GetFloat64("api.discogs.rate_limit")),
			discogs.WithTimeout(providerTimeout)))
	}
	enrichers = append(enrichers, wikipedia.New(wikipedia.WithTimeout(providerTimeout)))

	orchestrator := enricher.NewOrchestrator(enrichers, enricher.DefaultPrecedence(),
		providerTimeout, logger.With("component", "enrich"))

	var synthesizer synthesis.Synthesizer
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		synthesizer = gemini.New(key,
			gemini.WithModel(viper.GetString("api.gemini.model")),
			gemini.WithTimeout(viper.GetDuration("synthesis.timeout")))
	}
	synthStage := synthesis.NewStage(synthesizer, logger.With("component", "synthesis"))

	var searcher catalog.Searcher
	if id := os.Getenv("JAMENDO_CLIENT_ID"); id != "" {
		searcher = jamendo.New(id)
	}
	searchStage := catalog.NewStage(searcher,
		viper.GetFloat64("catalog.min_similarity"),
		logger.With("component", "catalog"))

	limit := limitFlag
	if limit <= 0 {
		limit = viper.GetInt("catalog.limit")
	}

	return pipeline.New(chain, orchestrator, synthStage, searchStage, limit,
		logger.With("component", "pipeline")), nil
}

func printResult(result *pipeline.Result) {
	fmt.Printf("Identified: %s - %s (confidence %.2f via %s)\n",
		result.Identity.Artist, result.Identity.Title,
		result.Identity.Confidence, result.Identity.Source)

	if len(result.Metadata.Genres) > 0 {
		fmt.Printf("Genres: %s\n", strings.Join(result.Metadata.Genres, ", "))
	}
	if len(result.Metadata.Tags) > 0 {
		fmt.Printf("Tags: %s\n", strings.Join(result.Metadata.Tags, ", "))
	}
	if result.Metadata.Year > 0 {
		fmt.Printf("Year: %d\n", result.Metadata.Year)
	}

	if result.Analysis != nil {
		fmt.Printf("\n%s\n", result.Analysis.Description)
		fmt.Printf("Keywords: %s\n", strings.Join(result.Analysis.Keywords, ", "))
	}

	if len(result.SimilarTracks) > 0 {
		fmt.Printf("\n=== SIMILAR ROYALTY-FREE TRACKS ===\n")
		for i, track := range result.SimilarTracks {
			fmt.Printf("%d. %s - %s (%.2f)\n", i+1, track.Artist, track.Title, track.Similarity)
			if track.License != "" {
				fmt.Printf("   license: %s\n", track.License)
			}
		}
	}

	for _, warning := range result.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}
}
