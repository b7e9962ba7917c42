package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"marketmind/internal/domain"
)

type CalendarSource interface {
	ID() string
	Name() string
	FetchEvents(ctx context.Context) ([]domain.MacroEvent, error)
}

type NewsSource interface {
	ID() string
	Name() string
	FetchNews(ctx context.Context) ([]domain.NewsRecord, error)
}

type EarningsSource interface {
	ID() string
	Name() string
	Resolve(ctx context.Context, tickers []string) []domain.EarningsRecord
}

type Analyst interface {
	ScoreNews(ctx context.Context, records []domain.NewsRecord) ([]domain.NewsRecord, error)
	AnalyzeMacro(ctx context.Context, events []domain.MacroEvent) ([]domain.MacroEvent, error)
}

type DocumentStore interface {
	Put(ctx context.Context, doc *domain.Document) error
	Watchlist(ctx context.Context) ([]string, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Notifier interface {
	Send(ctx context.Context, text string) error
}

type Publisher interface {
	Publish(ctx context.Context, record *domain.NewsRecord) error
	Close() error
}
