package dto

import "github.com/chuntfm/fm-server/internal/domain/channel"

// ChannelSummary is the API model for GET /channels list entries.
type ChannelSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ChannelDetail is the API model for GET /channels/{id}; it adds the full
// stream-variant list to the summary fields.
type ChannelDetail struct {
	ChannelSummary
	Streams []channel.StreamVariant `json:"streams"`
}

// NewChannelSummary maps a catalog channel to its list representation.
func NewChannelSummary(ch *channel.Channel) ChannelSummary {
	return ChannelSummary{ID: ch.ID, Name: ch.Name, Description: ch.Description}
}

// NewChannelDetail maps a catalog channel to its detail representation.
func NewChannelDetail(ch *channel.Channel) ChannelDetail {
	streams := ch.Streams
	if streams == nil {
		streams = []channel.StreamVariant{}
	}
	return ChannelDetail{ChannelSummary: NewChannelSummary(ch), Streams: streams}
}
