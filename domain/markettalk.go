package domain

import (
	"strings"
	"time"
)

// TalkHost identifies one of the two scripted podcast hosts.
type TalkHost string

const (
	HostMike  TalkHost = "MIKE"  // the bull
	HostSarah TalkHost = "SARAH" // the skeptic
)

// ParseTalkHost parses a host name leniently.
func ParseTalkHost(s string) (TalkHost, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MIKE":
		return HostMike, true
	case "SARAH":
		return HostSarah, true
	}
	return "", false
}

// TalkMessage is a single line in a Market Talk conversation.
type TalkMessage struct {
	Host      TalkHost  `json:"host"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Ticker    *string   `json:"ticker,omitempty"`
	Sentiment *string   `json:"sentiment,omitempty"`
}

// TalkEpisode is one Market Talk conversation. At most one episode is live
// at a time; the live pointer is tracked separately in storage.
type TalkEpisode struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Topic            string        `json:"topic"`
	Messages         []TalkMessage `json:"messages"`
	CreatedAt        time.Time     `json:"createdAt"`
	IsLive           bool          `json:"isLive"`
	TickersMentioned []string      `json:"tickersMentioned"`
	AudioURL         *string       `json:"audioUrl,omitempty"`
	Duration         *int          `json:"duration,omitempty"`
}

// LatestExchange returns the trailing n messages of the episode.
func (e TalkEpisode) LatestExchange(n int) []TalkMessage {
	if n <= 0 || len(e.Messages) == 0 {
		return []TalkMessage{}
	}
	if n >= len(e.Messages) {
		return e.Messages
	}
	return e.Messages[len(e.Messages)-n:]
}

// Message generation bounds for a new episode request.
const (
	MinTalkMessages     = 2
	MaxTalkMessages     = 10
	DefaultTalkMessages = 4
)
