// pkg/audiofile/audiofile.go - Local audio file inspection

package audiofile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/dhowden/tag"
)

// ErrNoTags is returned when a file carries no usable embedded metadata.
var ErrNoTags = errors.New("no embedded tags found")

// EmbeddedTags holds the identification-relevant fields read from a
// file's embedded metadata.
type EmbeddedTags struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Year   int
}

// Fingerprint is the chromaprint fingerprint of a file plus its duration
// in whole seconds, the shape the AcoustID lookup wants.
type Fingerprint struct {
	Fingerprint string  `json:"fingerprint"`
	Duration    float64 `json:"duration"`
}

// ReadTags extracts title/artist and friends from the file's embedded
// metadata (ID3, MP4, FLAC - whatever the tag package recognizes).
func ReadTags(path string) (*EmbeddedTags, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return nil, ErrNoTags
		}
		return nil, fmt.Errorf("read tags from %s: %w", path, err)
	}

	tags := &EmbeddedTags{
		Title:  meta.Title(),
		Artist: meta.Artist(),
		Album:  meta.Album(),
		Genre:  meta.Genre(),
		Year:   meta.Year(),
	}
	if tags.Title == "" && tags.Artist == "" {
		return nil, ErrNoTags
	}
	return tags, nil
}

// ComputeFingerprint shells out to fpcalc (chromaprint) for the file's
// acoustic fingerprint. A missing fpcalc binary is reported as such so
// the caller can fall back to tag-based identification.
func ComputeFingerprint(ctx context.Context, path string) (*Fingerprint, error) {
	cmd := exec.CommandContext(ctx, "fpcalc", "-json", path)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("fpcalc failed: %s", string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("run fpcalc (is chromaprint installed?): %w", err)
	}

	var fp Fingerprint
	if err := json.Unmarshal(out, &fp); err != nil {
		return nil, fmt.Errorf("parse fpcalc output: %w", err)
	}
	if fp.Fingerprint == "" || fp.Duration <= 0 {
		return nil, errors.New("fpcalc produced no fingerprint")
	}
	return &fp, nil
}
