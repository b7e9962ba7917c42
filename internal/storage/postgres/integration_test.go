//go:build integration

package postgres

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"marketmind/internal/domain"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_create_documents.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM documents")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) TestDocumentStore_PutAndGet() {
	store := NewDocumentStore(s.db)

	doc := &domain.Document{
		Name: domain.DocNews,
		Payload: map[string]any{
			"articles": []domain.NewsRecord{
				{Title: "Fed signals pause", Link: "https://example.com/a", Score: 9, Impact: "positive", Reason: "Policy pivot"},
			},
		},
		LastUpdated: "2025-03-14 20:30 (+08)",
	}

	err := store.Put(s.ctx, doc)
	s.NoError(err)

	var payload struct {
		Articles []domain.NewsRecord `json:"articles"`
	}
	found, err := store.Get(s.ctx, domain.DocNews, &payload)
	s.NoError(err)
	s.True(found)
	s.Len(payload.Articles, 1)
	s.Equal("Fed signals pause", payload.Articles[0].Title)
	s.Equal(9, payload.Articles[0].Score)
}

func (s *PostgresIntegrationSuite) TestDocumentStore_PutOverwrites() {
	store := NewDocumentStore(s.db)

	first := &domain.Document{
		Name: domain.DocMacro,
		Payload: map[string]any{
			"events": []domain.MacroEvent{
				{Title: "CPI YoY"},
				{Title: "Retail Sales MoM"},
			},
		},
		LastUpdated: "old",
	}
	s.NoError(store.Put(s.ctx, first))

	second := &domain.Document{
		Name: domain.DocMacro,
		Payload: map[string]any{
			"events": []domain.MacroEvent{
				{Title: "NFP"},
			},
		},
		LastUpdated: "new",
	}
	s.NoError(store.Put(s.ctx, second))

	// A later snapshot fully replaces the earlier one, never merges.
	var payload struct {
		Events []domain.MacroEvent `json:"events"`
	}
	found, err := store.Get(s.ctx, domain.DocMacro, &payload)
	s.NoError(err)
	s.True(found)
	s.Len(payload.Events, 1)
	s.Equal("NFP", payload.Events[0].Title)

	var lastUpdated string
	err = s.db.GetContext(s.ctx, &lastUpdated, "SELECT last_updated FROM documents WHERE name = $1", domain.DocMacro)
	s.NoError(err)
	s.Equal("new", lastUpdated)

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM documents")
	s.NoError(err)
	s.Equal(1, count)
}

func (s *PostgresIntegrationSuite) TestDocumentStore_GetMissing() {
	store := NewDocumentStore(s.db)

	var payload map[string]any
	found, err := store.Get(s.ctx, "no-such-document", &payload)
	s.NoError(err)
	s.False(found)
}

func (s *PostgresIntegrationSuite) TestDocumentStore_EmptySnapshot() {
	store := NewDocumentStore(s.db)

	doc := &domain.Document{
		Name:        domain.DocEarnings,
		Payload:     map[string]any{"events": []domain.EarningsRecord{}},
		LastUpdated: "2025-03-14 20:30 (+08)",
	}
	s.NoError(store.Put(s.ctx, doc))

	var payload struct {
		Events []domain.EarningsRecord `json:"events"`
	}
	found, err := store.Get(s.ctx, domain.DocEarnings, &payload)
	s.NoError(err)
	s.True(found)
	s.Empty(payload.Events)
}

func (s *PostgresIntegrationSuite) TestWatchlist() {
	store := NewDocumentStore(s.db)

	doc := &domain.Document{
		Name:        domain.DocWatchlist,
		Payload:     map[string]any{"tickers": []string{"AAPL", "MSFT", "NVDA"}},
		LastUpdated: "",
	}
	s.NoError(store.Put(s.ctx, doc))

	tickers, err := store.Watchlist(s.ctx)
	s.NoError(err)
	s.Equal([]string{"AAPL", "MSFT", "NVDA"}, tickers)
}

func (s *PostgresIntegrationSuite) TestWatchlist_MissingDocument() {
	store := NewDocumentStore(s.db)

	tickers, err := store.Watchlist(s.ctx)
	s.NoError(err)
	s.Nil(tickers)
}

func (s *PostgresIntegrationSuite) TestTransaction_Commit() {
	tm := NewTransactionManager(s.db)
	store := NewDocumentStore(s.db)

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		for _, name := range []string{domain.DocMacro, domain.DocNews, domain.DocEarnings} {
			doc := &domain.Document{
				Name:        name,
				Payload:     map[string]any{},
				LastUpdated: "run-1",
			}
			if err := store.Put(ctx, doc); err != nil {
				return err
			}
		}
		return nil
	})
	s.NoError(err)

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM documents")
	s.NoError(err)
	s.Equal(3, count)
}

func (s *PostgresIntegrationSuite) TestTransaction_Rollback() {
	tm := NewTransactionManager(s.db)
	store := NewDocumentStore(s.db)

	pre := &domain.Document{
		Name:        domain.DocMacro,
		Payload:     map[string]any{"events": []domain.MacroEvent{{Title: "kept"}}},
		LastUpdated: "before",
	}
	s.NoError(store.Put(s.ctx, pre))

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		doc := &domain.Document{
			Name:        domain.DocMacro,
			Payload:     map[string]any{"events": []domain.MacroEvent{{Title: "discarded"}}},
			LastUpdated: "during",
		}
		if err := store.Put(ctx, doc); err != nil {
			return err
		}
		return context.Canceled
	})
	s.Error(err)

	// The half-written snapshot rolled back with the transaction.
	var lastUpdated string
	err = s.db.GetContext(s.ctx, &lastUpdated, "SELECT last_updated FROM documents WHERE name = $1", domain.DocMacro)
	s.NoError(err)
	s.Equal("before", lastUpdated)
}
