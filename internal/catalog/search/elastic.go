package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/catalog"
	pkgsearch "github.com/fekuna/omnipos-catalog-service/pkg/search"
)

// defaultSize is used when the caller does not bound the lookup.
const defaultSize = 200

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// Index is the subset of the Elasticsearch client the searcher needs.
type Index interface {
	Search(ctx context.Context, index string, query map[string]interface{}) (*pkgsearch.SearchResponse, error)
}

type elasticSearcher struct {
	client Index
	index  string
}

func NewElasticSearcher(client Index, index string) catalog.Searcher {
	return &elasticSearcher{client: client, index: index}
}

func (s *elasticSearcher) SearchCodes(ctx context.Context, term string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = defaultSize
	}
	pattern := "*" + wildcardEscaper.Replace(term) + "*"
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []map[string]interface{}{
					substring("item_code", pattern),
					substring("item_name", pattern),
				},
				"minimum_should_match": 1,
				"filter": []map[string]interface{}{
					{"term": map[string]interface{}{"disabled": false}},
				},
			},
		},
		"_source": []string{"item_code"},
		"size":    limit,
	}

	res, err := s.client.Search(ctx, s.index, q)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.index, err)
	}

	codes := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var src struct {
			ItemCode string `json:"item_code"`
		}
		if err := json.Unmarshal(hit.Source, &src); err == nil && src.ItemCode != "" {
			codes = append(codes, src.ItemCode)
			continue
		}
		if hit.ID != "" {
			codes = append(codes, hit.ID)
		}
	}
	return codes, nil
}

// substring matches term anywhere in a keyword field, ignoring case.
func substring(field, pattern string) map[string]interface{} {
	return map[string]interface{}{
		"wildcard": map[string]interface{}{
			field: map[string]interface{}{
				"value":            pattern,
				"case_insensitive": true,
			},
		},
	}
}
