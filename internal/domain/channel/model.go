package channel

import (
	"errors"
	"fmt"
)

var (
	ErrNoStreams       = errors.New("no streams available")
	ErrQualityNotFound = errors.New("quality not found")
)

// Channel is one configured broadcast destination. The catalog loads channels
// once at startup; nothing mutates them afterwards.
type Channel struct {
	ID          int64           `json:"id" yaml:"id"`                     //
	Name        string          `json:"name" yaml:"name"`                 //
	Description string          `json:"description" yaml:"description"`   //
	JukeboxMode bool            `json:"jukebox_mode" yaml:"jukebox_mode"` // channel is driven by the jukebox feed only
	Streams     []StreamVariant `json:"streams" yaml:"streams"`           // ordered; may be empty
}

// StreamVariant is one concrete playable URL for a channel at a given quality.
type StreamVariant struct {
	URL       string  `json:"url" yaml:"url"`                         //
	BackupURL *string `json:"backup_url,omitempty" yaml:"backup_url"` // nullable
	Format    string  `json:"format" yaml:"format"`                   //
	Bitrate   int     `json:"bitrate" yaml:"bitrate"`                 //
	Quality   string  `json:"quality" yaml:"quality"`                 // unique within a channel; lookup key
	Default   *bool   `json:"default,omitempty" yaml:"default"`       // nullable (at most one true per channel)
}

// IsDefault reports whether the variant carries an explicit default flag.
func (v *StreamVariant) IsDefault() bool { return v.Default != nil && *v.Default }

// DefaultStream returns the variant flagged default, falling back to the first
// variant in list order when none is flagged. ErrNoStreams when the channel
// has no variants at all.
func (ch *Channel) DefaultStream() (*StreamVariant, error) {
	for i := range ch.Streams {
		if ch.Streams[i].IsDefault() {
			return &ch.Streams[i], nil
		}
	}
	if len(ch.Streams) > 0 {
		return &ch.Streams[0], nil
	}
	return nil, ErrNoStreams
}

// StreamByQuality returns the first variant whose quality tag matches exactly
// (case-sensitive). ErrQualityNotFound when none match.
func (ch *Channel) StreamByQuality(quality string) (*StreamVariant, error) {
	for i := range ch.Streams {
		if ch.Streams[i].Quality == quality {
			return &ch.Streams[i], nil
		}
	}
	return nil, fmt.Errorf("%q: %w", quality, ErrQualityNotFound)
}

// Validate checks catalog-time invariants. An empty stream list is legal; the
// default-stream lookup reports ErrNoStreams at request time instead.
func (ch *Channel) Validate() error {
	if ch.ID <= 0 {
		return errors.New("id must be a positive integer")
	}

	// name: minLength 1, maxLength 100
	if len(ch.Name) < 1 {
		return errors.New("name must be at least 1 character")
	}
	if len(ch.Name) > 100 {
		return errors.New("name must be at most 100 characters")
	}

	defaults := 0
	qualities := make(map[string]struct{}, len(ch.Streams))
	for i := range ch.Streams {
		v := &ch.Streams[i]
		if v.URL == "" {
			return fmt.Errorf("streams[%d].url is required", i)
		}
		if v.Quality == "" {
			return fmt.Errorf("streams[%d].quality is required", i)
		}
		if _, ok := qualities[v.Quality]; ok {
			return fmt.Errorf("duplicate stream quality %q", v.Quality)
		}
		qualities[v.Quality] = struct{}{}
		if v.IsDefault() {
			defaults++
		}
	}
	if defaults > 1 {
		return errors.New("at most one stream may be flagged default")
	}

	return nil
}
