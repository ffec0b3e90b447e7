package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/stonexlabs/portfolio-agent/pkg/store"
	"github.com/stonexlabs/portfolio-agent/pkg/store/sqlite"
	"github.com/stonexlabs/portfolio-agent/pkg/tool"
)

func newSeededStore(t *testing.T) store.PortfolioStore {
	t.Helper()
	s, err := sqlite.New(t.TempDir() + "/portfolio.db")
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	for _, h := range []store.Holding{
		{ClientID: "C001", Ticker: "AAPL", Quantity: 100, CostBasis: 150},
		{ClientID: "C001", Ticker: "MSFT", Quantity: 50, CostBasis: 300},
	} {
		if err := s.UpsertHolding(ctx, h); err != nil {
			t.Fatalf("UpsertHolding: %v", err)
		}
	}
	for _, q := range []store.Quote{
		{Ticker: "AAPL", Price: 200, ChangePct: 1.2, PERatio: 32, Beta: 1.1},
		{Ticker: "MSFT", Price: 400, ChangePct: -0.4, PERatio: 35, Beta: 0.9},
	} {
		if err := s.UpsertQuote(ctx, q); err != nil {
			t.Fatalf("UpsertQuote: %v", err)
		}
	}
	return s
}

func execute(t *testing.T, d tool.Descriptor, args map[string]any) string {
	t.Helper()
	r, err := tool.NewRegistry(d)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	out, err := r.Invoke(context.Background(), d.Name, args)
	if err != nil {
		t.Fatalf("Invoke(%s): %v", d.Name, err)
	}
	return out
}

func TestPortfolioSummaryTool(t *testing.T) {
	d := PortfolioSummary(newSeededStore(t))

	out := execute(t, d, map[string]any{"client_id": "C001"})
	for _, want := range []string{"C001", "2 positions", "AAPL", "MSFT", "$20000.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPortfolioSummaryToolNoHoldings(t *testing.T) {
	d := PortfolioSummary(newSeededStore(t))

	out := execute(t, d, map[string]any{"client_id": "C999"})
	if !strings.Contains(out, "No holdings found") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestPortfolioSummaryToolRequiresClientID(t *testing.T) {
	d := PortfolioSummary(newSeededStore(t))
	r, err := tool.NewRegistry(d)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if _, err := r.Invoke(context.Background(), d.Name, map[string]any{}); err == nil {
		t.Fatal("expected validation error without client_id")
	}
}

func TestMarketDataTool(t *testing.T) {
	d := MarketData(newSeededStore(t))

	out := execute(t, d, map[string]any{"tickers": "aapl, MSFT, ZZZZ"})
	if !strings.Contains(out, "AAPL: $200.00") {
		t.Errorf("missing AAPL quote:\n%s", out)
	}
	if !strings.Contains(out, "No data available for: ZZZZ") {
		t.Errorf("missing unknown-ticker note:\n%s", out)
	}
}

func TestPortfolioRiskTool(t *testing.T) {
	d := PortfolioRisk(newSeededStore(t))

	out := execute(t, d, map[string]any{"client_id": "C001"})
	for _, want := range []string{"Risk metrics", "2 positions", "Value-weighted beta", "Largest position"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSplitTickers(t *testing.T) {
	got := splitTickers(" aapl,MSFT , ,nvda")
	want := []string{"AAPL", "MSFT", "NVDA"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ticker %d = %s, want %s", i, got[i], want[i])
		}
	}
}
