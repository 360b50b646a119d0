package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	pkgsearch "github.com/fekuna/omnipos-catalog-service/pkg/search"
)

type fakeIndex struct {
	query map[string]interface{}
	index string
	resp  *pkgsearch.SearchResponse
	err   error
}

func (f *fakeIndex) Search(_ context.Context, index string, q map[string]interface{}) (*pkgsearch.SearchResponse, error) {
	f.index, f.query = index, q
	return f.resp, f.err
}

func TestSearchCodes(t *testing.T) {
	resp := &pkgsearch.SearchResponse{}
	resp.Hits.Hits = append(resp.Hits.Hits,
		pkgsearch.Hit{ID: "doc-1", Source: json.RawMessage(`{"item_code":"A100"}`)},
		pkgsearch.Hit{ID: "B200", Source: json.RawMessage(`{}`)},
	)
	idx := &fakeIndex{resp: resp}

	codes, err := NewElasticSearcher(idx, "catalog_items").SearchCodes(context.Background(), "juice", 0)
	if err != nil {
		t.Fatalf("SearchCodes: %v", err)
	}
	if len(codes) != 2 || codes[0] != "A100" || codes[1] != "B200" {
		t.Errorf("codes: got %v", codes)
	}
	if idx.index != "catalog_items" {
		t.Errorf("index: got %s", idx.index)
	}
	if idx.query["size"] != defaultSize {
		t.Errorf("size: got %v", idx.query["size"])
	}

	// only code and name are searched, as substrings
	should := idx.query["query"].(map[string]interface{})["bool"].(map[string]interface{})["should"].([]map[string]interface{})
	if len(should) != 2 {
		t.Fatalf("should clauses: got %d", len(should))
	}
	for i, field := range []string{"item_code", "item_name"} {
		clause := should[i]["wildcard"].(map[string]interface{})[field].(map[string]interface{})
		if clause["value"] != "*juice*" {
			t.Errorf("%s pattern: got %v", field, clause["value"])
		}
	}
}

func TestSearchCodesEscapesWildcards(t *testing.T) {
	idx := &fakeIndex{resp: &pkgsearch.SearchResponse{}}
	if _, err := NewElasticSearcher(idx, "catalog_items").SearchCodes(context.Background(), "50*?", 10); err != nil {
		t.Fatalf("SearchCodes: %v", err)
	}
	should := idx.query["query"].(map[string]interface{})["bool"].(map[string]interface{})["should"].([]map[string]interface{})
	got := should[0]["wildcard"].(map[string]interface{})["item_code"].(map[string]interface{})["value"]
	if want := `*50\*\?*`; got != want {
		t.Errorf("pattern: got %v, want %v", got, want)
	}
}

func TestSearchCodesError(t *testing.T) {
	idx := &fakeIndex{err: errors.New("cluster red")}
	if _, err := NewElasticSearcher(idx, "catalog_items").SearchCodes(context.Background(), "x", 5); err == nil {
		t.Fatal("expected error")
	}
}
