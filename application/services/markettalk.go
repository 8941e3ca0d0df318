package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
	"github.com/tradestreak/wall-street-service/domain"
	"github.com/tradestreak/wall-street-service/pkg/common"
)

// MarketTalkEpisodesPage is one page of episodes plus the live episode when
// one is running.
type MarketTalkEpisodesPage struct {
	Episodes    []domain.TalkEpisode   `json:"episodes"`
	LiveEpisode *domain.TalkEpisode    `json:"liveEpisode,omitempty"`
	Pagination  *common.PaginationInfo `json:"pagination"`
}

// MarketTalkLatest is the home-card payload: the newest episode with its
// trailing exchange.
type MarketTalkLatest struct {
	Episode        *domain.TalkEpisode  `json:"episode,omitempty"`
	LatestMessages []domain.TalkMessage `json:"latestMessages"`
	IsLive         bool                 `json:"isLive"`
}

// MarketTalkService implements the scripted two-host podcast.
type MarketTalkService struct {
	repo   ports.MarketTalkRepository
	logger *zap.Logger
}

// NewMarketTalkService creates the service.
func NewMarketTalkService(repo ports.MarketTalkRepository, logger *zap.Logger) *MarketTalkService {
	return &MarketTalkService{repo: repo, logger: logger}
}

// GetEpisodes returns one page of episodes, newest first, with the live
// episode surfaced separately.
func (s *MarketTalkService) GetEpisodes(ctx context.Context, page, pageSize int) (MarketTalkEpisodesPage, error) {
	episodes, total, err := s.repo.GetEpisodes(ctx, page, pageSize)
	if err != nil {
		return MarketTalkEpisodesPage{}, err
	}

	result := MarketTalkEpisodesPage{
		Episodes:   episodes,
		Pagination: common.BuildPaginationMeta(page, pageSize, total),
	}
	if live, found, err := s.repo.GetLiveEpisode(ctx); err != nil {
		return MarketTalkEpisodesPage{}, err
	} else if found {
		result.LiveEpisode = &live
	}
	return result, nil
}

// GetEpisodeDetail returns one episode by id.
func (s *MarketTalkService) GetEpisodeDetail(ctx context.Context, episodeID string) (domain.TalkEpisode, error) {
	return s.repo.GetEpisodeByID(ctx, episodeID)
}

// GetLatest returns the live episode, or failing that the newest one, with
// its last four messages. Empty payload when no episode exists at all.
func (s *MarketTalkService) GetLatest(ctx context.Context) (MarketTalkLatest, error) {
	if live, found, err := s.repo.GetLiveEpisode(ctx); err != nil {
		return MarketTalkLatest{}, err
	} else if found {
		return MarketTalkLatest{
			Episode:        &live,
			LatestMessages: live.LatestExchange(domain.DefaultTalkMessages),
			IsLive:         true,
		}, nil
	}

	latest, found, err := s.repo.GetLatestEpisode(ctx)
	if err != nil {
		return MarketTalkLatest{}, err
	}
	if !found {
		return MarketTalkLatest{LatestMessages: []domain.TalkMessage{}}, nil
	}
	return MarketTalkLatest{
		Episode:        &latest,
		LatestMessages: latest.LatestExchange(domain.DefaultTalkMessages),
	}, nil
}

// GenerateEpisode creates a finished episode with templated host dialogue.
// The message count is clamped to the allowed range.
func (s *MarketTalkService) GenerateEpisode(ctx context.Context, topic string, ticker *string, messageCount int) (domain.TalkEpisode, error) {
	if messageCount <= 0 {
		messageCount = domain.DefaultTalkMessages
	}
	if messageCount < domain.MinTalkMessages {
		messageCount = domain.MinTalkMessages
	}
	if messageCount > domain.MaxTalkMessages {
		messageCount = domain.MaxTalkMessages
	}

	title := fmt.Sprintf("Market Talk: %s", topic)
	tickers := []string{}
	if ticker != nil && *ticker != "" {
		upper := strings.ToUpper(strings.TrimSpace(*ticker))
		ticker = &upper
		title = fmt.Sprintf("Market Talk: %s Discussion", upper)
		tickers = append(tickers, upper)
	}

	episode := domain.TalkEpisode{
		ID:               uuid.NewString()[:8],
		Title:            title,
		Topic:            topic,
		Messages:         s.scriptDialogue(topic, ticker, messageCount),
		CreatedAt:        time.Now().UTC(),
		TickersMentioned: tickers,
	}
	if err := s.repo.SaveEpisode(ctx, episode); err != nil {
		return domain.TalkEpisode{}, err
	}

	s.logger.Info("Generated market talk episode",
		zap.String("episodeId", episode.ID),
		zap.String("topic", topic),
		zap.Int("messages", messageCount),
	)
	return episode, nil
}

// StartLiveEpisode opens a new live episode, ending any current one first.
func (s *MarketTalkService) StartLiveEpisode(ctx context.Context, topic string, ticker *string) (domain.TalkEpisode, error) {
	if current, found, err := s.repo.GetLiveEpisode(ctx); err != nil {
		return domain.TalkEpisode{}, err
	} else if found {
		if err := s.repo.EndLiveEpisode(ctx, current.ID); err != nil {
			return domain.TalkEpisode{}, err
		}
	}

	title := fmt.Sprintf("LIVE: %s", topic)
	tickers := []string{}
	if ticker != nil && *ticker != "" {
		upper := strings.ToUpper(strings.TrimSpace(*ticker))
		title = fmt.Sprintf("LIVE: %s Analysis", upper)
		tickers = append(tickers, upper)
	}

	episode := domain.TalkEpisode{
		ID:               uuid.NewString()[:8],
		Title:            title,
		Topic:            topic,
		Messages:         []domain.TalkMessage{},
		CreatedAt:        time.Now().UTC(),
		IsLive:           true,
		TickersMentioned: tickers,
	}
	if err := s.repo.SaveEpisode(ctx, episode); err != nil {
		return domain.TalkEpisode{}, err
	}

	s.logger.Info("Started live market talk episode",
		zap.String("episodeId", episode.ID),
		zap.String("topic", topic),
	)
	return episode, nil
}

// AddLiveMessage appends a host message to a live episode. An unknown host
// name falls back to Mike.
func (s *MarketTalkService) AddLiveMessage(ctx context.Context, episodeID, host, text string, ticker, sentiment *string) (domain.TalkEpisode, error) {
	parsed, ok := domain.ParseTalkHost(host)
	if !ok {
		parsed = domain.HostMike
	}

	msg := domain.TalkMessage{
		Host:      parsed,
		Text:      text,
		Timestamp: time.Now().UTC(),
		Ticker:    ticker,
		Sentiment: sentiment,
	}
	if err := s.repo.AddMessage(ctx, episodeID, msg); err != nil {
		return domain.TalkEpisode{}, err
	}
	return s.repo.GetEpisodeByID(ctx, episodeID)
}

// EndLiveEpisode closes the live episode and returns its final state.
func (s *MarketTalkService) EndLiveEpisode(ctx context.Context, episodeID string) (domain.TalkEpisode, error) {
	if err := s.repo.EndLiveEpisode(ctx, episodeID); err != nil {
		return domain.TalkEpisode{}, err
	}
	s.logger.Info("Ended live market talk episode", zap.String("episodeId", episodeID))
	return s.repo.GetEpisodeByID(ctx, episodeID)
}

// GetEpisodesByTicker lists episodes discussing a ticker. Tickers double as
// topics in the topic index.
func (s *MarketTalkService) GetEpisodesByTicker(ctx context.Context, ticker string, limit int) ([]domain.TalkEpisode, error) {
	return s.repo.GetEpisodesByTopic(ctx, strings.ToUpper(strings.TrimSpace(ticker)), limit)
}

// scriptDialogue builds the alternating Mike/Sarah exchange from templates.
func (s *MarketTalkService) scriptDialogue(topic string, ticker *string, count int) []domain.TalkMessage {
	subject := topic
	if ticker != nil {
		subject = *ticker
	}

	mikeLines := []string{
		fmt.Sprintf("I'm really liking what I see with %s. This is the setup!", subject),
		fmt.Sprintf("Look, everyone's panicking about %s, but that's when you buy.", topic),
		fmt.Sprintf("The fundamentals on %s are solid. I'm bullish here.", subject),
		"This pullback is a gift. I'm adding to my position.",
	}
	sarahLines := []string{
		fmt.Sprintf("Hold on, Mike. Let's look at the actual numbers on %s.", subject),
		fmt.Sprintf("I need more data before I'd commit to %s. Let's see the receipts.", subject),
		"The market's been wrong before. What's the downside here?",
		"I'm not saying sell, but the valuation looks stretched to me.",
	}

	bullish, cautious := "Bullish", "Cautious"
	now := time.Now().UTC()
	messages := make([]domain.TalkMessage, 0, count)
	for i := 0; i < count; i++ {
		msg := domain.TalkMessage{
			Timestamp: now,
			Ticker:    ticker,
		}
		if i%2 == 0 {
			msg.Host = domain.HostMike
			msg.Text = mikeLines[rand.Intn(len(mikeLines))]
			msg.Sentiment = &bullish
		} else {
			msg.Host = domain.HostSarah
			msg.Text = sarahLines[rand.Intn(len(sarahLines))]
			msg.Sentiment = &cautious
		}
		messages = append(messages, msg)
	}
	return messages
}
