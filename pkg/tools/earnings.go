package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/stonexlabs/portfolio-agent/pkg/search"
	"github.com/stonexlabs/portfolio-agent/pkg/tool"
)

// defaultEarningsResults mirrors the retriever's configured result count.
const defaultEarningsResults = 2

// EarningsSearch returns the search_earnings_reports descriptor.
func EarningsSearch(searcher search.EarningsSearcher) tool.Descriptor {
	return tool.Descriptor{
		Name:        "search_earnings_reports",
		Description: "Searches recent earnings reports and financial analysis for publicly traded companies. Use this to get latest earnings results, revenue trends, management guidance, and business insights for specific tickers.",
		Schema: tool.ObjectSchema(map[string]*tool.Schema{
			"query": tool.StringParam("Natural-language search query, e.g. \"NVDA data center revenue growth\"."),
		}, "query"),
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			query, _ := args["query"].(string)
			hits, err := searcher.Search(ctx, query, defaultEarningsResults)
			if err != nil {
				return "", fmt.Errorf("searching earnings reports: %w", err)
			}
			if len(hits) == 0 {
				return "No earnings reports matched the query.", nil
			}

			var b strings.Builder
			for i, h := range hits {
				fmt.Fprintf(&b, "[%d] %s — %s\n%s\n", i+1, h.Ticker, h.Title, h.Content)
			}
			return b.String(), nil
		},
	}
}
