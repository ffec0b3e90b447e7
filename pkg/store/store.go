// Package store defines the portfolio data interfaces consumed by the
// agent's structured-query tools.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrClientNotFound indicates the client has no holdings on record.
var ErrClientNotFound = errors.New("client not found")

// Holding is one position in a client's portfolio, enriched with the
// latest market price when available.
type Holding struct {
	ClientID    string  `json:"client_id"`
	Ticker      string  `json:"ticker"`
	Quantity    float64 `json:"quantity"`
	CostBasis   float64 `json:"cost_basis"`
	Price       float64 `json:"price"`
	MarketValue float64 `json:"market_value"`
}

// Quote is the latest market data for one ticker.
type Quote struct {
	Ticker    string    `json:"ticker"`
	Price     float64   `json:"price"`
	ChangePct float64   `json:"change_pct"`
	PERatio   float64   `json:"pe_ratio,omitempty"`
	Beta      float64   `json:"beta"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RiskReport aggregates portfolio-level risk metrics for one client.
type RiskReport struct {
	ClientID       string  `json:"client_id"`
	Positions      int     `json:"positions"`
	TotalValue     float64 `json:"total_value"`
	WeightedBeta   float64 `json:"weighted_beta"`
	TopPosition    string  `json:"top_position"`
	TopPositionPct float64 `json:"top_position_pct"`
}

// PortfolioStore provides the read model behind the portfolio tools, plus
// upserts for provisioning.
type PortfolioStore interface {
	PortfolioSummary(ctx context.Context, clientID string) ([]Holding, error)
	MarketData(ctx context.Context, tickers []string) ([]Quote, error)
	PortfolioRisk(ctx context.Context, clientID string) (RiskReport, error)
	UpsertHolding(ctx context.Context, h Holding) error
	UpsertQuote(ctx context.Context, q Quote) error
	Close() error
}
