package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
	"github.com/tradestreak/wall-street-service/domain"
	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

const (
	pkMarketTalk     = "MARKET_TALK"
	skEpisodePrefix  = "EPISODE#"
	skCurrentLive    = "CURRENT_LIVE"
	gsiTopicPrefix   = "TOPIC#"
	episodeScanLimit = 100

	// episodeSortStamp is the second-resolution stamp in the episode sort
	// key. Episode ids are random, so the stamp keeps ordering stable.
	episodeSortStamp = "2006-01-02T15:04:05"
)

// MarketTalkRepository persists scripted podcast episodes and the live
// pointer.
type MarketTalkRepository struct {
	store     ports.Store
	indexName string
	logger    *zap.Logger
}

// NewMarketTalkRepository creates the repository.
func NewMarketTalkRepository(store ports.Store, indexName string, logger *zap.Logger) *MarketTalkRepository {
	return &MarketTalkRepository{store: store, indexName: indexName, logger: logger}
}

type talkMessageItem struct {
	Host      string  `dynamodbav:"host"`
	Text      string  `dynamodbav:"text"`
	Timestamp string  `dynamodbav:"timestamp"`
	Ticker    *string `dynamodbav:"ticker,omitempty"`
	Sentiment *string `dynamodbav:"sentiment,omitempty"`
}

type episodeItem struct {
	PK               string            `dynamodbav:"PK"`
	SK               string            `dynamodbav:"SK"`
	GSI1PK           string            `dynamodbav:"GSI1PK"`
	GSI1SK           string            `dynamodbav:"GSI1SK"`
	ID               string            `dynamodbav:"id"`
	Title            string            `dynamodbav:"title"`
	Topic            string            `dynamodbav:"topic"`
	Messages         []talkMessageItem `dynamodbav:"messages"`
	CreatedAt        string            `dynamodbav:"createdAt"`
	IsLive           bool              `dynamodbav:"isLive"`
	TickersMentioned []string          `dynamodbav:"tickersMentioned"`
	AudioURL         *string           `dynamodbav:"audioUrl,omitempty"`
	Duration         *int              `dynamodbav:"duration,omitempty"`
	UpdatedAt        string            `dynamodbav:"updatedAt"`
}

type livePointerItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	EpisodeID string `dynamodbav:"episodeId"`
	EpisodeSK string `dynamodbav:"episodeSk"`
	UpdatedAt string `dynamodbav:"updatedAt"`
}

// GetEpisodes returns one page of episodes, newest first.
func (r *MarketTalkRepository) GetEpisodes(ctx context.Context, page, pageSize int) ([]domain.TalkEpisode, int, error) {
	items, total, err := r.store.QueryPaginated(ctx, ports.QuerySpec{
		PartitionKey: pkMarketTalk,
		Sort:         ports.SortCondition{BeginsWith: skEpisodePrefix},
	}, page, pageSize)
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("query episodes", err)
	}

	episodes := make([]domain.TalkEpisode, 0, len(items))
	for _, item := range items {
		episode, err := unmarshalEpisode(item)
		if err != nil {
			r.logger.Warn("Skipping malformed episode row", zap.Error(err))
			continue
		}
		episodes = append(episodes, episode)
	}
	return episodes, total, nil
}

// GetEpisodeByID scans the 100 most recent episodes for the id. The sort
// key carries the creation stamp, so a direct key lookup needs it too.
func (r *MarketTalkRepository) GetEpisodeByID(ctx context.Context, episodeID string) (domain.TalkEpisode, error) {
	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: pkMarketTalk,
		Sort:         ports.SortCondition{BeginsWith: skEpisodePrefix},
		Limit:        episodeScanLimit,
	})
	if err != nil {
		return domain.TalkEpisode{}, apperrors.NewDatabaseError("query episodes by id", err)
	}

	for _, item := range items {
		episode, err := unmarshalEpisode(item)
		if err != nil {
			continue
		}
		if episode.ID == episodeID {
			return episode, nil
		}
	}
	return domain.TalkEpisode{}, apperrors.NewNotFoundError("TalkEpisode", episodeID)
}

// GetLiveEpisode follows the live pointer to the episode row.
func (r *MarketTalkRepository) GetLiveEpisode(ctx context.Context) (domain.TalkEpisode, bool, error) {
	item, found, err := r.store.Get(ctx, ports.Key{PK: pkMarketTalk, SK: skCurrentLive})
	if err != nil {
		return domain.TalkEpisode{}, false, apperrors.NewDatabaseError("get live pointer", err)
	}
	if !found {
		return domain.TalkEpisode{}, false, nil
	}

	var pointer livePointerItem
	if err := attributevalue.UnmarshalMap(item, &pointer); err != nil {
		return domain.TalkEpisode{}, false, apperrors.NewDatabaseError("unmarshal live pointer", err)
	}

	row, found, err := r.store.Get(ctx, ports.Key{PK: pkMarketTalk, SK: pointer.EpisodeSK})
	if err != nil {
		return domain.TalkEpisode{}, false, apperrors.NewDatabaseError("get live episode", err)
	}
	if !found {
		// Stale pointer, treat as nothing live.
		return domain.TalkEpisode{}, false, nil
	}

	episode, err := unmarshalEpisode(row)
	if err != nil {
		return domain.TalkEpisode{}, false, err
	}
	return episode, true, nil
}

// GetLatestEpisode returns the newest episode by creation time.
func (r *MarketTalkRepository) GetLatestEpisode(ctx context.Context) (domain.TalkEpisode, bool, error) {
	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: pkMarketTalk,
		Sort:         ports.SortCondition{BeginsWith: skEpisodePrefix},
		Limit:        1,
	})
	if err != nil {
		return domain.TalkEpisode{}, false, apperrors.NewDatabaseError("query latest episode", err)
	}
	if len(items) == 0 {
		return domain.TalkEpisode{}, false, nil
	}

	episode, err := unmarshalEpisode(items[0])
	if err != nil {
		return domain.TalkEpisode{}, false, err
	}
	return episode, true, nil
}

// SaveEpisode upserts the episode and, when live, points the live pointer
// at it.
func (r *MarketTalkRepository) SaveEpisode(ctx context.Context, episode domain.TalkEpisode) error {
	now := time.Now().UTC().Format(time.RFC3339)
	sk := episodeSK(episode)

	messages := make([]talkMessageItem, 0, len(episode.Messages))
	for _, msg := range episode.Messages {
		messages = append(messages, talkMessageItem{
			Host:      string(msg.Host),
			Text:      msg.Text,
			Timestamp: msg.Timestamp.Format(time.RFC3339),
			Ticker:    msg.Ticker,
			Sentiment: msg.Sentiment,
		})
	}

	item := episodeItem{
		PK:               pkMarketTalk,
		SK:               sk,
		GSI1PK:           gsiTopicPrefix + episode.Topic,
		GSI1SK:           episode.CreatedAt.Format(time.RFC3339),
		ID:               episode.ID,
		Title:            episode.Title,
		Topic:            episode.Topic,
		Messages:         messages,
		CreatedAt:        episode.CreatedAt.Format(time.RFC3339),
		IsLive:           episode.IsLive,
		TickersMentioned: episode.TickersMentioned,
		AudioURL:         episode.AudioURL,
		Duration:         episode.Duration,
		UpdatedAt:        now,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return apperrors.NewDatabaseError("marshal episode", err)
	}
	if err := r.store.Put(ctx, av); err != nil {
		return apperrors.NewDatabaseError("save episode", err)
	}

	if episode.IsLive {
		pointer, err := attributevalue.MarshalMap(livePointerItem{
			PK:        pkMarketTalk,
			SK:        skCurrentLive,
			EpisodeID: episode.ID,
			EpisodeSK: sk,
			UpdatedAt: now,
		})
		if err != nil {
			return apperrors.NewDatabaseError("marshal live pointer", err)
		}
		if err := r.store.Put(ctx, pointer); err != nil {
			return apperrors.NewDatabaseError("save live pointer", err)
		}
	}

	r.logger.Info("Saved market talk episode",
		zap.String("id", episode.ID),
		zap.String("topic", episode.Topic),
		zap.Bool("isLive", episode.IsLive),
	)
	return nil
}

// AddMessage appends a message to the episode and records its ticker.
func (r *MarketTalkRepository) AddMessage(ctx context.Context, episodeID string, msg domain.TalkMessage) error {
	episode, err := r.GetEpisodeByID(ctx, episodeID)
	if err != nil {
		return err
	}

	episode.Messages = append(episode.Messages, msg)
	if msg.Ticker != nil && !containsString(episode.TickersMentioned, *msg.Ticker) {
		episode.TickersMentioned = append(episode.TickersMentioned, *msg.Ticker)
	}
	return r.SaveEpisode(ctx, episode)
}

// EndLiveEpisode marks the episode ended and clears the live pointer.
func (r *MarketTalkRepository) EndLiveEpisode(ctx context.Context, episodeID string) error {
	episode, err := r.GetEpisodeByID(ctx, episodeID)
	if err != nil {
		return err
	}

	episode.IsLive = false
	if err := r.SaveEpisode(ctx, episode); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, ports.Key{PK: pkMarketTalk, SK: skCurrentLive}); err != nil {
		return apperrors.NewDatabaseError("clear live pointer", err)
	}
	return nil
}

// GetEpisodesByTopic lists episodes under the topic partition, newest
// first.
func (r *MarketTalkRepository) GetEpisodesByTopic(ctx context.Context, topic string, limit int) ([]domain.TalkEpisode, error) {
	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: gsiTopicPrefix + topic,
		IndexName:    r.indexName,
		Limit:        int32(limit),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("query episodes by topic", err)
	}

	episodes := make([]domain.TalkEpisode, 0, len(items))
	for _, item := range items {
		episode, err := unmarshalEpisode(item)
		if err != nil {
			continue
		}
		episodes = append(episodes, episode)
	}
	return episodes, nil
}

func episodeSK(episode domain.TalkEpisode) string {
	return fmt.Sprintf("%s%s#%s", skEpisodePrefix, episode.CreatedAt.Format(episodeSortStamp), episode.ID)
}

func unmarshalEpisode(item ports.Item) (domain.TalkEpisode, error) {
	var row episodeItem
	if err := attributevalue.UnmarshalMap(item, &row); err != nil {
		return domain.TalkEpisode{}, apperrors.NewDatabaseError("unmarshal episode", err)
	}

	createdAt, _ := time.Parse(time.RFC3339, row.CreatedAt)
	messages := make([]domain.TalkMessage, 0, len(row.Messages))
	for _, msg := range row.Messages {
		ts, _ := time.Parse(time.RFC3339, msg.Timestamp)
		messages = append(messages, domain.TalkMessage{
			Host:      domain.TalkHost(msg.Host),
			Text:      msg.Text,
			Timestamp: ts,
			Ticker:    msg.Ticker,
			Sentiment: msg.Sentiment,
		})
	}

	return domain.TalkEpisode{
		ID:               row.ID,
		Title:            row.Title,
		Topic:            row.Topic,
		Messages:         messages,
		CreatedAt:        createdAt,
		IsLive:           row.IsLive,
		TickersMentioned: row.TickersMentioned,
		AudioURL:         row.AudioURL,
		Duration:         row.Duration,
	}, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
