// Package search keeps an Elasticsearch index of posts and queries it.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/blog/internal/models"
)

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

type Index struct {
	es    *elasticsearch.Client
	index string
}

func NewClient(ctx context.Context, cfg Config) (*Index, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: new client: %w", err)
	}

	res, err := es.Info(es.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch: info: %s: %s", res.Status(), body)
	}

	return &Index{es: es, index: cfg.Index}, nil
}

type document struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	UserID  uint   `json:"user_id"`
}

func (ix *Index) IndexPost(ctx context.Context, p models.Post) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(document{ID: p.ID, Title: p.Title, Content: p.Content, UserID: p.UserID}); err != nil {
		return fmt.Errorf("elasticsearch: encode post: %w", err)
	}

	res, err := ix.es.Index(ix.index, &buf,
		ix.es.Index.WithContext(ctx),
		ix.es.Index.WithDocumentID(docID(p.ID)),
		ix.es.Index.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch: index post: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch: index post: %s", res.Status())
	}
	return nil
}

func (ix *Index) DeletePost(ctx context.Context, id uint) error {
	res, err := ix.es.Delete(ix.index, docID(id), ix.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch: delete post: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("elasticsearch: delete post: %s", res.Status())
	}
	return nil
}

// Search returns matching post ids ranked by relevance.
func (ix *Index) Search(ctx context.Context, text string, owner *uint, from, size int) (int64, []uint, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildQuery(text, owner, from, size)); err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: encode query: %w", err)
	}

	res, err := ix.es.Search(
		ix.es.Search.WithContext(ctx),
		ix.es.Search.WithIndex(ix.index),
		ix.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("elasticsearch: search: %s", res.Status())
	}
	return decodeHits(res.Body)
}

func buildQuery(text string, owner *uint, from, size int) map[string]any {
	boolQuery := map[string]any{
		"must": []any{
			map[string]any{
				"multi_match": map[string]any{
					"query":     text,
					"fields":    []string{"title^2", "content"},
					"fuzziness": "AUTO",
				},
			},
		},
	}
	if owner != nil {
		boolQuery["filter"] = []any{
			map[string]any{"term": map[string]any{"user_id": *owner}},
		}
	}
	return map[string]any{
		"query":   map[string]any{"bool": boolQuery},
		"from":    from,
		"size":    size,
		"_source": []string{"id"},
	}
}

func decodeHits(r io.Reader) (int64, []uint, error) {
	var body struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: decode hits: %w", err)
	}

	ids := make([]uint, 0, len(body.Hits.Hits))
	for _, h := range body.Hits.Hits {
		ids = append(ids, h.Source.ID)
	}
	return body.Hits.Total.Value, ids, nil
}

func docID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
