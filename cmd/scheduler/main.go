package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/infrastructure/config"
	"github.com/tradestreak/wall-street-service/infrastructure/di"
	"github.com/tradestreak/wall-street-service/infrastructure/ingestion"
)

// Task names, matched against the scheduled event detail.
const (
	taskRefreshCongress = "refresh-congress"
	taskRefreshMembers  = "refresh-members"
	taskRefreshMood     = "refresh-mood"
	taskRefreshEarnings = "refresh-earnings"
	taskResolveMood     = "resolve-mood"
	taskResolveEarnings = "resolve-earnings"
	taskProcessGames    = "process-games"
)

const (
	// tradeIngestDaysBack bounds the daily trade pull.
	tradeIngestDaysBack = 7
	// memberAggregationDaysBack bounds the weekly member profile rebuild.
	memberAggregationDaysBack = 365
	// earningsCalendarDaysAhead bounds the earnings calendar pull.
	earningsCalendarDaysAhead = 90
	// earningsResolveDaysBack bounds the lookback for unresolved events.
	earningsResolveDaysBack = 3
)

var container *di.Container

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
}

type taskDetail struct {
	Task string `json:"task"`
}

// Handler dispatches one scheduled task per invocation.
func Handler(ctx context.Context, event events.CloudWatchEvent) error {
	var detail taskDetail
	if len(event.Detail) > 0 {
		if err := json.Unmarshal(event.Detail, &detail); err != nil {
			return fmt.Errorf("parsing event detail: %w", err)
		}
	}
	task := detail.Task
	if task == "" {
		task = event.DetailType
	}

	logger := container.Logger
	logger.Info("Running scheduled task", zap.String("task", task))

	var run func(context.Context) (int, error)
	switch task {
	case taskRefreshCongress:
		run = refreshCongress
	case taskRefreshMembers:
		run = refreshMembers
	case taskRefreshMood:
		run = refreshMood
	case taskRefreshEarnings:
		run = refreshEarnings
	case taskResolveMood:
		run = resolveMood
	case taskResolveEarnings:
		run = resolveEarnings
	case taskProcessGames:
		run = processGames
	default:
		return fmt.Errorf("unknown task %q", task)
	}

	var count int
	err := container.Tracer.TraceFunction(ctx, task, func(ctx context.Context) error {
		container.Tracer.AddAnnotation(ctx, "task", task)
		var taskErr error
		count, taskErr = run(ctx)
		return taskErr
	})

	if err != nil {
		logger.Error("Scheduled task failed", zap.String("task", task), zap.Error(err))
		return err
	}

	if container.Config.EnableMetrics {
		container.Metrics.Count(ctx, "TaskItemsProcessed", float64(count), map[string]string{"task": task})
	}
	logger.Info("Scheduled task complete", zap.String("task", task), zap.Int("count", count))
	return nil
}

// refreshCongress pulls recent disclosures from FMP and QuiverQuant and
// upserts them. The two feeds overlap; identical composite ids collapse on
// write.
func refreshCongress(ctx context.Context) (int, error) {
	logger := container.Logger

	trades, err := container.FMP.FetchRecentTrades(ctx, tradeIngestDaysBack)
	if err != nil {
		logger.Warn("FMP trade fetch failed, continuing with QuiverQuant", zap.Error(err))
	}
	quiverTrades, err := container.Quiver.FetchRecentTrades(ctx, tradeIngestDaysBack)
	if err != nil {
		if len(trades) == 0 {
			return 0, err
		}
		logger.Warn("QuiverQuant trade fetch failed", zap.Error(err))
	}
	trades = append(trades, quiverTrades...)

	saved := 0
	for _, trade := range trades {
		if err := container.CongressService.SaveTrade(ctx, trade); err != nil {
			logger.Warn("Failed to save trade", zap.String("tradeID", trade.ID), zap.Error(err))
			continue
		}
		saved++
	}
	return saved, nil
}

// refreshMembers rebuilds member profiles by aggregating a year of trades.
func refreshMembers(ctx context.Context) (int, error) {
	trades, err := container.Quiver.FetchRecentTrades(ctx, memberAggregationDaysBack)
	if err != nil {
		return 0, err
	}

	saved := 0
	for _, member := range ingestion.AggregateMembers(trades) {
		if err := container.CongressService.SaveMember(ctx, member); err != nil {
			container.Logger.Warn("Failed to save member", zap.String("memberID", member.ID), zap.Error(err))
			continue
		}
		saved++
	}
	return saved, nil
}

func refreshMood(ctx context.Context) (int, error) {
	mood, err := container.MoodFeed.FetchCurrentMood(ctx)
	if err != nil {
		return 0, err
	}
	if err := container.MoodService.SaveMood(ctx, mood); err != nil {
		return 0, err
	}
	return 1, nil
}

func refreshEarnings(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	calendar, err := container.FMP.FetchUpcomingEvents(ctx, now, now.AddDate(0, 0, earningsCalendarDaysAhead))
	if err != nil {
		return 0, err
	}

	saved := 0
	for _, event := range calendar {
		if err := container.EarningsService.SaveEvent(ctx, event); err != nil {
			container.Logger.Warn("Failed to save earnings event", zap.String("eventID", event.ID), zap.Error(err))
			continue
		}
		saved++
	}
	return saved, nil
}

func resolveMood(ctx context.Context) (int, error) {
	return container.MoodService.ResolvePredictions(ctx, time.Now().UTC())
}

// resolveEarnings looks back over recently passed events and closes those
// whose actuals have been published.
func resolveEarnings(ctx context.Context) (int, error) {
	logger := container.Logger
	now := time.Now().UTC()

	events, err := container.EarningsRepo.GetUpcomingEvents(ctx, now.AddDate(0, 0, -earningsResolveDaysBack), now, 100)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, event := range events {
		if event.PredictionsClosed || event.EarningsDate.After(now) {
			continue
		}
		actualEPS, actualRevenue, err := container.FMP.FetchActuals(ctx, event.Ticker)
		if err != nil {
			logger.Warn("Failed to fetch actuals", zap.String("ticker", event.Ticker), zap.Error(err))
			continue
		}
		if actualEPS == nil {
			continue
		}
		if _, err := container.EarningsService.UpdateEventResults(ctx, event.ID, actualEPS, actualRevenue); err != nil {
			logger.Warn("Failed to resolve earnings event", zap.String("eventID", event.ID), zap.Error(err))
			continue
		}
		resolved++
	}
	return resolved, nil
}

func processGames(ctx context.Context) (int, error) {
	return container.BeatCongressService.ProcessExpiredGames(ctx)
}

func main() {
	lambda.Start(Handler)
}
