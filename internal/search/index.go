package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/study_planner/internal/models"
)

var ErrIndex = errors.New("search index error")

// Index keeps a searchable copy of plan metadata. Content stays in the store.
type Index interface {
	IndexPlan(ctx context.Context, plan *models.StudyPlan) error
	DeletePlan(ctx context.Context, id uuid.UUID) error
	SearchPlans(ctx context.Context, ownerID uuid.UUID, query string, size int) ([]uuid.UUID, error)
}

type Config struct {
	URL      string
	Username string
	Password string
	Index    string
}

type ESIndex struct {
	es    *elasticsearch.Client
	index string
}

type planDoc struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Subject   string `json:"subject"`
	Goal      string `json:"goal"`
	Deadline  string `json:"deadline"`
	CreatedAt string `json:"created_at"`
}

func NewESIndex(cfg Config) (*ESIndex, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("info", res.Status(), res.Body)
	}

	return &ESIndex{es: client, index: cfg.Index}, nil
}

func (x *ESIndex) IndexPlan(ctx context.Context, plan *models.StudyPlan) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(planDoc{
		ID:        plan.ID.String(),
		UserID:    plan.UserID.String(),
		Subject:   plan.Subject,
		Goal:      plan.Goal,
		Deadline:  plan.Deadline,
		CreatedAt: plan.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}); err != nil {
		return fmt.Errorf("encode plan doc: %w", err)
	}

	res, err := x.es.Index(
		x.index,
		&buf,
		x.es.Index.WithContext(ctx),
		x.es.Index.WithDocumentID(plan.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("%w: index: %w", ErrIndex, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res.Status(), res.Body)
	}
	return nil
}

func (x *ESIndex) DeletePlan(ctx context.Context, id uuid.UUID) error {
	res, err := x.es.Delete(x.index, id.String(), x.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: delete: %w", ErrIndex, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return responseError("delete", res.Status(), res.Body)
	}
	return nil
}

func (x *ESIndex) SearchPlans(ctx context.Context, ownerID uuid.UUID, query string, size int) ([]uuid.UUID, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchBody(ownerID, query, size)); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := x.es.Search(
		x.es.Search.WithContext(ctx),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", ErrIndex, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("search", res.Status(), res.Body)
	}

	return decodeHits(res.Body)
}

func searchBody(ownerID uuid.UUID, query string, size int) map[string]any {
	return map[string]any{
		"size": size,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"user_id.keyword": ownerID.String()}},
				},
				"must": []any{
					map[string]any{"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"subject^2", "goal"},
						"fuzziness": "AUTO",
					}},
				},
			},
		},
	}
}

func decodeHits(body io.Reader) ([]uuid.UUID, error) {
	var r struct {
		Hits struct {
			Hits []struct {
				Source planDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: decode hits: %w", ErrIndex, err)
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		id, err := uuid.Parse(h.Source.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func responseError(op, status string, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, 512))
	return fmt.Errorf("%w: %s returned %s: %s", ErrIndex, op, status, strings.TrimSpace(string(b)))
}
