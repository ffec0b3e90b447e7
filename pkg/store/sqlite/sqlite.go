// Package sqlite provides the portfolio data store backing the agent's
// structured-query tools.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stonexlabs/portfolio-agent/pkg/store"
)

// Store implements store.PortfolioStore using SQLite.
type Store struct {
	db *sql.DB
}

var _ store.PortfolioStore = (*Store)(nil)

// New opens (or creates) a SQLite database at the given path and runs
// migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS holdings (
		client_id TEXT NOT NULL,
		ticker TEXT NOT NULL,
		quantity REAL NOT NULL,
		cost_basis REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (client_id, ticker)
	);
	CREATE TABLE IF NOT EXISTS market_data (
		ticker TEXT PRIMARY KEY,
		price REAL NOT NULL,
		change_pct REAL NOT NULL DEFAULT 0,
		pe_ratio REAL,
		beta REAL NOT NULL DEFAULT 1.0,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_holdings_client ON holdings(client_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// UpsertHolding inserts or replaces a holding row. Used by data
// provisioning and tests.
func (s *Store) UpsertHolding(ctx context.Context, h store.Holding) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holdings (client_id, ticker, quantity, cost_basis)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(client_id, ticker) DO UPDATE SET
			quantity = excluded.quantity,
			cost_basis = excluded.cost_basis`,
		h.ClientID, h.Ticker, h.Quantity, h.CostBasis)
	return err
}

// UpsertQuote inserts or replaces a market data row.
func (s *Store) UpsertQuote(ctx context.Context, q store.Quote) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO market_data (ticker, price, change_pct, pe_ratio, beta, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			price = excluded.price,
			change_pct = excluded.change_pct,
			pe_ratio = excluded.pe_ratio,
			beta = excluded.beta,
			updated_at = excluded.updated_at`,
		q.Ticker, q.Price, q.ChangePct, q.PERatio, q.Beta, time.Now().UTC())
	return err
}

// PortfolioSummary returns a client's holdings joined with latest prices,
// largest positions first.
func (s *Store) PortfolioSummary(ctx context.Context, clientID string) ([]store.Holding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT h.client_id, h.ticker, h.quantity, h.cost_basis,
		       COALESCE(m.price, 0) AS price
		FROM holdings h
		LEFT JOIN market_data m ON m.ticker = h.ticker
		WHERE h.client_id = ?
		ORDER BY h.quantity * COALESCE(m.price, 0) DESC`,
		clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Holding
	for rows.Next() {
		var h store.Holding
		if err := rows.Scan(&h.ClientID, &h.Ticker, &h.Quantity, &h.CostBasis, &h.Price); err != nil {
			return nil, err
		}
		h.MarketValue = h.Quantity * h.Price
		out = append(out, h)
	}
	return out, rows.Err()
}

// MarketData returns quotes for the given tickers. Unknown tickers are
// simply absent from the result.
func (s *Store) MarketData(ctx context.Context, tickers []string) ([]store.Quote, error) {
	if len(tickers) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(tickers))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(tickers))
	for i, t := range tickers {
		args[i] = strings.ToUpper(strings.TrimSpace(t))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ticker, price, change_pct, pe_ratio, beta, updated_at
		 FROM market_data WHERE ticker IN (`+placeholders+`) ORDER BY ticker`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Quote
	for rows.Next() {
		var q store.Quote
		var pe sql.NullFloat64
		if err := rows.Scan(&q.Ticker, &q.Price, &q.ChangePct, &pe, &q.Beta, &q.UpdatedAt); err != nil {
			return nil, err
		}
		if pe.Valid {
			q.PERatio = pe.Float64
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// PortfolioRisk computes portfolio-level risk metrics for a client from
// holdings and market data.
func (s *Store) PortfolioRisk(ctx context.Context, clientID string) (store.RiskReport, error) {
	holdings, err := s.PortfolioSummary(ctx, clientID)
	if err != nil {
		return store.RiskReport{}, err
	}
	if len(holdings) == 0 {
		return store.RiskReport{}, fmt.Errorf("%w: %s", store.ErrClientNotFound, clientID)
	}

	tickers := make([]string, len(holdings))
	for i, h := range holdings {
		tickers[i] = h.Ticker
	}
	quotes, err := s.MarketData(ctx, tickers)
	if err != nil {
		return store.RiskReport{}, err
	}
	betas := make(map[string]float64, len(quotes))
	for _, q := range quotes {
		betas[q.Ticker] = q.Beta
	}

	report := store.RiskReport{ClientID: clientID, Positions: len(holdings)}
	for _, h := range holdings {
		report.TotalValue += h.MarketValue
	}
	for _, h := range holdings {
		if report.TotalValue <= 0 {
			break
		}
		weight := h.MarketValue / report.TotalValue
		beta, ok := betas[h.Ticker]
		if !ok {
			beta = 1.0
		}
		report.WeightedBeta += weight * beta
		if weight > report.TopPositionPct {
			report.TopPositionPct = weight
			report.TopPosition = h.Ticker
		}
	}
	return report, nil
}
