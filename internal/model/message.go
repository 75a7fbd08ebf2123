package model

import "time"

// Channel names a chat room.
type Channel string

const (
	ChannelGeneral  Channel = "general"
	ChannelSupport  Channel = "support"
	ChannelSecurity Channel = "security"
)

var Channels = []Channel{ChannelGeneral, ChannelSupport, ChannelSecurity}

// ValidChannel reports whether c is one of Channels.
func ValidChannel(c Channel) bool {
	for _, v := range Channels {
		if v == c {
			return true
		}
	}
	return false
}

// Message is one chat line.
//
// SenderID is empty for messages written by the bot. IsCurrentUser is not
// stored; it is filled in for whoever is reading the history.
type Message struct {
	ID            string    `json:"id"`
	Channel       Channel   `json:"channel"`
	SenderID      string    `json:"senderId,omitempty"`
	SenderName    string    `json:"senderName"`
	SenderAvatar  string    `json:"senderAvatar"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
	IsCurrentUser bool      `json:"isCurrentUser"`
}
