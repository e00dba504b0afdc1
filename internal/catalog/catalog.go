package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/chuntfm/fm-server/internal/domain/channel"
	"gopkg.in/yaml.v3"
)

var ErrChannelNotFound = errors.New("channel not found")

// Catalog is the static channel table. It is read-only after construction, so
// it is shared across requests without synchronization.
type Catalog struct {
	byID    map[int64]*channel.Channel
	ordered []*channel.Channel
}

// New builds a catalog from the given channels. Every channel is validated and
// IDs must be unique.
func New(chs []*channel.Channel) (*Catalog, error) {
	byID := make(map[int64]*channel.Channel, len(chs))
	for _, ch := range chs {
		if err := ch.Validate(); err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch.ID, err)
		}
		if _, ok := byID[ch.ID]; ok {
			return nil, fmt.Errorf("duplicate channel id %d", ch.ID)
		}
		byID[ch.ID] = ch
	}
	return &Catalog{byID: byID, ordered: chs}, nil
}

// Load reads the channel table from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var doc struct {
		Channels []*channel.Channel `yaml:"channels"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	return New(doc.Channels)
}

// Get returns the channel by ID. ErrChannelNotFound for unconfigured IDs.
func (c *Catalog) Get(id int64) (*channel.Channel, error) {
	ch, ok := c.byID[id]
	if !ok {
		return nil, ErrChannelNotFound
	}
	return ch, nil
}

// List returns all channels in file order.
func (c *Catalog) List() []*channel.Channel { return c.ordered }

// Len returns the number of configured channels.
func (c *Catalog) Len() int { return len(c.ordered) }
