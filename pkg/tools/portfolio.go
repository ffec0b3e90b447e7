// Package tools constructs the portfolio-analysis tool descriptors exposed
// to the agent.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stonexlabs/portfolio-agent/pkg/store"
	"github.com/stonexlabs/portfolio-agent/pkg/tool"
)

// PortfolioSummary returns the get_portfolio_summary descriptor.
func PortfolioSummary(db store.PortfolioStore) tool.Descriptor {
	return tool.Descriptor{
		Name:        "get_portfolio_summary",
		Description: "Returns a client's current holdings with quantities, cost basis, latest prices, and market values. Use this first for any portfolio question.",
		Schema: tool.ObjectSchema(map[string]*tool.Schema{
			"client_id": tool.StringParam("The client identifier, e.g. C001."),
		}, "client_id"),
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			clientID, _ := args["client_id"].(string)
			holdings, err := db.PortfolioSummary(ctx, clientID)
			if err != nil {
				return "", fmt.Errorf("loading portfolio for %s: %w", clientID, err)
			}
			if len(holdings) == 0 {
				return fmt.Sprintf("No holdings found for client %s.", clientID), nil
			}
			return formatHoldings(holdings), nil
		},
	}
}

// MarketData returns the get_market_data descriptor.
func MarketData(db store.PortfolioStore) tool.Descriptor {
	return tool.Descriptor{
		Name:        "get_market_data",
		Description: "Returns latest price, daily change, P/E ratio, and beta for one or more tickers. Pass tickers as a comma-separated list, e.g. \"AAPL,MSFT\".",
		Schema: tool.ObjectSchema(map[string]*tool.Schema{
			"tickers": tool.StringParam("Comma-separated ticker symbols."),
		}, "tickers"),
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			raw, _ := args["tickers"].(string)
			tickers := splitTickers(raw)
			if len(tickers) == 0 {
				return "", errors.New("no tickers given")
			}
			quotes, err := db.MarketData(ctx, tickers)
			if err != nil {
				return "", fmt.Errorf("loading market data: %w", err)
			}
			if len(quotes) == 0 {
				return fmt.Sprintf("No market data available for: %s.", strings.Join(tickers, ", ")), nil
			}
			return formatQuotes(tickers, quotes), nil
		},
	}
}

// PortfolioRisk returns the calculate_portfolio_risk descriptor.
func PortfolioRisk(db store.PortfolioStore) tool.Descriptor {
	return tool.Descriptor{
		Name:        "calculate_portfolio_risk",
		Description: "Calculates portfolio-level risk metrics for a client: total value, position count, value-weighted beta, and concentration in the largest position.",
		Schema: tool.ObjectSchema(map[string]*tool.Schema{
			"client_id": tool.StringParam("The client identifier, e.g. C001."),
		}, "client_id"),
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			clientID, _ := args["client_id"].(string)
			report, err := db.PortfolioRisk(ctx, clientID)
			if err != nil {
				return "", fmt.Errorf("calculating risk for %s: %w", clientID, err)
			}
			return formatRisk(report), nil
		},
	}
}

func formatHoldings(holdings []store.Holding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Holdings for client %s (%d positions):\n", holdings[0].ClientID, len(holdings))
	for _, h := range holdings {
		fmt.Fprintf(&b, "- %s: %.2f shares, cost basis $%.2f, price $%.2f, market value $%.2f\n",
			h.Ticker, h.Quantity, h.CostBasis, h.Price, h.MarketValue)
	}
	return b.String()
}

func formatQuotes(requested []string, quotes []store.Quote) string {
	found := make(map[string]bool, len(quotes))
	var b strings.Builder
	for _, q := range quotes {
		found[q.Ticker] = true
		fmt.Fprintf(&b, "- %s: $%.2f (%+.2f%% today), P/E %.1f, beta %.2f\n",
			q.Ticker, q.Price, q.ChangePct, q.PERatio, q.Beta)
	}
	var missing []string
	for _, t := range requested {
		if !found[strings.ToUpper(t)] {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(&b, "No data available for: %s.\n", strings.Join(missing, ", "))
	}
	return b.String()
}

func formatRisk(r store.RiskReport) string {
	return fmt.Sprintf(
		"Risk metrics for client %s:\n- Total value: $%.2f across %d positions\n- Value-weighted beta: %.2f\n- Largest position: %s at %.1f%% of portfolio\n",
		r.ClientID, r.TotalValue, r.Positions, r.WeightedBeta, r.TopPosition, r.TopPositionPct*100)
}

func splitTickers(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.ToUpper(strings.TrimSpace(part)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
