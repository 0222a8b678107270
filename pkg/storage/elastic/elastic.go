// Package elastic is the Elasticsearch backed log store, one index per
// log kind.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"loginsight/pkg/models"
	"loginsight/pkg/storage"
)

type Config struct {
	Nodes       []string
	AccessIndex string
	ErrorIndex  string
}

type Store struct {
	es          *elasticsearch.Client
	accessIndex string
	errorIndex  string
}

func New(conf Config) (*Store, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: conf.Nodes})
	if err != nil {
		return nil, fmt.Errorf("error creating the client: %w", err)
	}

	s := Store{
		es:          es,
		accessIndex: conf.AccessIndex,
		errorIndex:  conf.ErrorIndex,
	}
	if s.accessIndex == "" {
		s.accessIndex = "access-logs"
	}
	if s.errorIndex == "" {
		s.errorIndex = "error-logs"
	}

	return &s, nil
}

func (s *Store) Ping(ctx context.Context) error {
	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err != nil {
		return storage.ErrDBNotResponding
	}
	defer res.Body.Close()

	if res.IsError() {
		return storage.ErrDBNotResponding
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error { return nil }

func (s *Store) AddAccessLog(ctx context.Context, entry models.AccessLogEntry) error {
	return s.index(ctx, s.accessIndex, entry)
}

func (s *Store) AddAccessLogs(ctx context.Context, entries []models.AccessLogEntry) error {
	for _, e := range entries {
		if err := s.index(ctx, s.accessIndex, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) AddErrorLog(ctx context.Context, entry models.ErrorLogEntry) error {
	return s.index(ctx, s.errorIndex, entry)
}

func (s *Store) AddErrorLogs(ctx context.Context, entries []models.ErrorLogEntry) error {
	for _, e := range entries {
		if err := s.index(ctx, s.errorIndex, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) index(ctx context.Context, index string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	res, err := s.es.Index(index, bytes.NewReader(body), s.es.Index.WithContext(ctx))
	if res != nil {
		defer res.Body.Close()
	}
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("failed to index document in %s: %s", index, res.Status())
	}
	return nil
}

// AccessLogs returns access log documents within the query window,
// newest first.
func (s *Store) AccessLogs(ctx context.Context, q storage.Query) ([]models.AccessLogEntry, error) {
	var entries []models.AccessLogEntry
	if err := s.search(ctx, s.accessIndex, q, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ErrorLogs returns error log documents within the query window,
// newest first.
func (s *Store) ErrorLogs(ctx context.Context, q storage.Query) ([]models.ErrorLogEntry, error) {
	var entries []models.ErrorLogEntry
	if err := s.search(ctx, s.errorIndex, q, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) search(ctx context.Context, index string, q storage.Query, out interface{}) error {
	body, err := json.Marshal(searchBody(q))
	if err != nil {
		return err
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(index),
		s.es.Search.WithBody(bytes.NewReader(body)),
	)
	if res != nil {
		defer res.Body.Close()
	}
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("search on %s failed: %s", index, res.Status())
	}

	var envelope struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode search response: %w", err)
	}

	sources := make([]json.RawMessage, len(envelope.Hits.Hits))
	for i, hit := range envelope.Hits.Hits {
		sources[i] = hit.Source
	}
	joined, err := json.Marshal(sources)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(joined, out); err != nil {
		return fmt.Errorf("failed to decode log documents: %w", err)
	}
	return nil
}

// searchBody builds the range query for an open or closed time window.
func searchBody(q storage.Query) map[string]interface{} {
	window := map[string]interface{}{}
	if !q.From.IsZero() {
		window["gte"] = q.From.Format(time.RFC3339)
	}
	if !q.To.IsZero() {
		window["lte"] = q.To.Format(time.RFC3339)
	}

	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if len(window) > 0 {
		query = map[string]interface{}{
			"range": map[string]interface{}{"timestamp": window},
		}
	}

	return map[string]interface{}{
		"query": query,
		"sort":  []interface{}{map[string]interface{}{"timestamp": map[string]interface{}{"order": "desc"}}},
		"size":  q.Cap(),
	}
}
