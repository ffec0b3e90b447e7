// Package search provides semantic retrieval over indexed earnings
// reports, backing the search_earnings_reports tool.
package search

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
)

// Hit is one earnings document returned by a semantic query.
type Hit struct {
	Ticker  string `json:"ticker"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// EarningsSearcher finds earnings documents relevant to a query.
type EarningsSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
}

// Weaviate implements EarningsSearcher against a Weaviate nearText index.
type Weaviate struct {
	client *weaviate.Client
	class  string
}

var _ EarningsSearcher = (*Weaviate)(nil)

// NewWeaviate connects to a Weaviate instance. class names the indexed
// collection (e.g. "EarningsReport").
func NewWeaviate(host, scheme, class string) (*Weaviate, error) {
	client, err := weaviate.NewClient(weaviate.Config{Host: host, Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("creating weaviate client: %w", err)
	}
	return &Weaviate{client: client, class: class}, nil
}

// Search runs a nearText query and returns up to limit hits.
func (w *Weaviate) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	nearText := w.client.GraphQL().NearTextArgBuilder().WithConcepts([]string{query})

	res, err := w.client.GraphQL().Get().
		WithClassName(w.class).
		WithFields(
			graphql.Field{Name: "ticker"},
			graphql.Field{Name: "title"},
			graphql.Field{Name: "content"},
		).
		WithNearText(nearText).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate query: %w", err)
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("weaviate query: %s", res.Errors[0].Message)
	}

	return parseHits(res.Data["Get"], w.class)
}

func parseHits(raw any, class string) ([]Hit, error) {
	get, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected weaviate response shape")
	}
	objs, ok := get[class].([]any)
	if !ok {
		return nil, nil
	}

	hits := make([]Hit, 0, len(objs))
	for _, obj := range objs {
		fields, ok := obj.(map[string]any)
		if !ok {
			continue
		}
		hit := Hit{}
		hit.Ticker, _ = fields["ticker"].(string)
		hit.Title, _ = fields["title"].(string)
		hit.Content, _ = fields["content"].(string)
		hits = append(hits, hit)
	}
	return hits, nil
}
