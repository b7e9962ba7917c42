package service

import (
	"context"
	"log/slog"
	"time"

	"marketmind/internal/domain"
	"marketmind/internal/normalize"
	"marketmind/internal/render"
)

// Pipeline runs one ingestion-scoring-distribution pass. Every stage
// degrades on its own: a failed collector contributes an empty list, a
// failed sink is logged and skipped, and the run itself always
// completes with whatever was gathered.
type Pipeline struct {
	calendar  CalendarSource
	news      NewsSource
	earnings  EarningsSource
	analyst   Analyst
	store     DocumentStore
	txManager TransactionManager
	notifier  Notifier
	publisher Publisher
	loc       *time.Location
	logger    *slog.Logger
}

// NewPipeline wires the pipeline. analyst, store, txManager, notifier
// and publisher may each be nil; the dependent step is then skipped.
func NewPipeline(
	calendar CalendarSource,
	news NewsSource,
	earnings EarningsSource,
	analyst Analyst,
	store DocumentStore,
	txManager TransactionManager,
	notifier Notifier,
	publisher Publisher,
	loc *time.Location,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		calendar:  calendar,
		news:      news,
		earnings:  earnings,
		analyst:   analyst,
		store:     store,
		txManager: txManager,
		notifier:  notifier,
		publisher: publisher,
		loc:       loc,
		logger:    logger,
	}
}

// Run executes the full batch once. The returned stats report as much
// as the run successfully gathered; Run itself never fails.
func (p *Pipeline) Run(ctx context.Context) (*domain.RunStats, error) {
	startTime := time.Now()
	stats := &domain.RunStats{}

	p.logger.Info("starting run",
		"calendar", p.calendar.Name(),
		"news", p.news.Name(),
	)

	macro := p.collectMacro(ctx, stats)
	news := p.collectNews(ctx, stats)
	earnings := p.collectEarnings(ctx, stats)

	scored := p.scoreNews(ctx, news, stats)
	macro = p.analyzeMacro(ctx, macro, stats)

	p.persist(ctx, macro, scored, earnings, stats)
	p.notify(ctx, macro, scored, stats)
	p.publish(ctx, scored, stats)

	stats.Duration = time.Since(startTime)

	p.logger.Info("run completed",
		"macro_fetched", stats.MacroFetched,
		"macro_analyzed", stats.MacroAnalyzed,
		"news_fetched", stats.NewsFetched,
		"news_scored", stats.NewsScored,
		"tickers_resolved", stats.TickersResolved,
		"persisted", stats.Persisted,
		"notified", stats.Notified,
		"published", stats.Published,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)

	return stats, nil
}

func (p *Pipeline) collectMacro(ctx context.Context, stats *domain.RunStats) []domain.MacroEvent {
	events, err := p.calendar.FetchEvents(ctx)
	if err != nil {
		p.logger.Error("calendar collection failed", "error", err)
		stats.Errors++
		return nil
	}

	stats.MacroFetched = len(events)
	return events
}

func (p *Pipeline) collectNews(ctx context.Context, stats *domain.RunStats) []domain.NewsRecord {
	records, err := p.news.FetchNews(ctx)
	if err != nil {
		p.logger.Error("news collection failed", "error", err)
		stats.Errors++
		return nil
	}

	stats.NewsFetched = len(records)
	return records
}

func (p *Pipeline) collectEarnings(ctx context.Context, stats *domain.RunStats) []domain.EarningsRecord {
	if p.store == nil {
		p.logger.Info("document store not configured, skipping watchlist earnings")
		return nil
	}

	tickers, err := p.store.Watchlist(ctx)
	if err != nil {
		p.logger.Error("watchlist read failed", "error", err)
		stats.Errors++
		return nil
	}
	if len(tickers) == 0 {
		return nil
	}

	records := p.earnings.Resolve(ctx, tickers)

	stats.TickersResolved = len(records)
	stats.TickersSkipped = len(tickers) - len(records)
	return records
}

func (p *Pipeline) scoreNews(ctx context.Context, records []domain.NewsRecord, stats *domain.RunStats) []domain.NewsRecord {
	if p.analyst == nil || len(records) == 0 {
		return nil
	}

	scored, err := p.analyst.ScoreNews(ctx, records)
	if err != nil {
		p.logger.Error("news scoring failed", "error", err)
		stats.Errors++
		return nil
	}

	stats.NewsScored = len(scored)
	return scored
}

func (p *Pipeline) analyzeMacro(ctx context.Context, events []domain.MacroEvent, stats *domain.RunStats) []domain.MacroEvent {
	if p.analyst == nil || len(events) == 0 {
		return events
	}

	analyzed, err := p.analyst.AnalyzeMacro(ctx, events)
	if err != nil {
		// Events keep their pending placeholder.
		p.logger.Error("macro analysis failed", "error", err)
		stats.Errors++
		return events
	}

	stats.MacroAnalyzed = len(analyzed)
	return analyzed
}

func (p *Pipeline) persist(ctx context.Context, macro []domain.MacroEvent, scored []domain.NewsRecord, earnings []domain.EarningsRecord, stats *domain.RunStats) {
	if p.store == nil {
		p.logger.Info("document store not configured, skipping persistence")
		return
	}

	if macro == nil {
		macro = []domain.MacroEvent{}
	}
	if scored == nil {
		scored = []domain.NewsRecord{}
	}
	if earnings == nil {
		earnings = []domain.EarningsRecord{}
	}

	lastUpdated := normalize.Display(time.Now().UTC(), p.loc)

	docs := []*domain.Document{
		{Name: domain.DocMacro, Payload: map[string]any{"events": macro}, LastUpdated: lastUpdated},
		{Name: domain.DocNews, Payload: map[string]any{"articles": scored}, LastUpdated: lastUpdated},
		{Name: domain.DocEarnings, Payload: map[string]any{"events": earnings}, LastUpdated: lastUpdated},
	}

	put := func(txCtx context.Context) error {
		for _, doc := range docs {
			if err := p.store.Put(txCtx, doc); err != nil {
				return err
			}
		}
		return nil
	}

	var err error
	if p.txManager != nil {
		err = p.txManager.WithTransaction(ctx, put)
	} else {
		err = put(ctx)
	}
	if err != nil {
		p.logger.Error("persistence failed", "error", err)
		stats.Errors++
		return
	}

	stats.Persisted = true
}

func (p *Pipeline) notify(ctx context.Context, macro []domain.MacroEvent, scored []domain.NewsRecord, stats *domain.RunStats) {
	if p.notifier == nil {
		p.logger.Info("notification channel not configured, skipping")
		return
	}

	now := time.Now()

	var todays []domain.MacroEvent
	for _, ev := range macro {
		if normalize.SameDay(ev.Time, now, p.loc) {
			todays = append(todays, ev)
		}
	}

	if len(todays) > 0 {
		if err := p.notifier.Send(ctx, render.MacroDigest(todays, now, p.loc)); err != nil {
			p.logger.Error("macro digest notification failed", "error", err)
			stats.Errors++
		} else {
			stats.Notified++
		}
	}

	for _, record := range scored {
		if err := p.notifier.Send(ctx, render.NewsAlert(record)); err != nil {
			p.logger.Error("news alert notification failed", "title", record.Title, "error", err)
			stats.Errors++
			continue
		}
		stats.Notified++
	}
}

func (p *Pipeline) publish(ctx context.Context, scored []domain.NewsRecord, stats *domain.RunStats) {
	if p.publisher == nil {
		return
	}

	for i := range scored {
		if err := p.publisher.Publish(ctx, &scored[i]); err != nil {
			p.logger.Error("news alert publish failed", "title", scored[i].Title, "error", err)
			stats.Errors++
			continue
		}
		stats.Published++
	}
}
