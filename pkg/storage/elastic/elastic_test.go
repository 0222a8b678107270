package elastic

import (
	"testing"
	"time"

	"loginsight/pkg/storage"
)

func TestNewDefaultIndexes(t *testing.T) {
	s, err := New(Config{Nodes: []string{"http://localhost:9200"}})
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	if s.accessIndex != "access-logs" {
		t.Errorf("want default access index %q, got %q", "access-logs", s.accessIndex)
	}
	if s.errorIndex != "error-logs" {
		t.Errorf("want default error index %q, got %q", "error-logs", s.errorIndex)
	}
}

func Test_searchBodyOpenRange(t *testing.T) {
	body := searchBody(storage.Query{})

	if _, ok := body["query"].(map[string]interface{})["match_all"]; !ok {
		t.Errorf("want match_all query for open range, got %+v", body["query"])
	}
	if body["size"] != storage.DefaultLimit {
		t.Errorf("want size %d, got %v", storage.DefaultLimit, body["size"])
	}
}

func Test_searchBodyTimeWindow(t *testing.T) {
	from := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)

	body := searchBody(storage.Query{From: from, To: to, Limit: 50})

	rangeQuery, ok := body["query"].(map[string]interface{})["range"]
	if !ok {
		t.Fatalf("want range query, got %+v", body["query"])
	}
	window := rangeQuery.(map[string]interface{})["timestamp"].(map[string]interface{})
	if window["gte"] != "2024-03-15T00:00:00Z" {
		t.Errorf("want gte %q, got %v", "2024-03-15T00:00:00Z", window["gte"])
	}
	if window["lte"] != "2024-03-16T00:00:00Z" {
		t.Errorf("want lte %q, got %v", "2024-03-16T00:00:00Z", window["lte"])
	}
	if body["size"] != 50 {
		t.Errorf("want size 50, got %v", body["size"])
	}
}

func Test_searchBodyHalfOpenRange(t *testing.T) {
	from := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	body := searchBody(storage.Query{From: from})

	window := body["query"].(map[string]interface{})["range"].(map[string]interface{})["timestamp"].(map[string]interface{})
	if window["gte"] != "2024-03-15T00:00:00Z" {
		t.Errorf("want gte %q, got %v", "2024-03-15T00:00:00Z", window["gte"])
	}
	if _, ok := window["lte"]; ok {
		t.Error("want no lte bound for half open range")
	}
}
