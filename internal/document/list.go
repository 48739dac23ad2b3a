package document

import (
	"context"
	"fmt"
	"strings"

	"peo_admin/internal/cache"
	"peo_admin/internal/model"
	"peo_admin/internal/query"
)

// ListParams filters the document list
type ListParams struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Search     string `json:"search"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	District   string `json:"district"`
	ProjectRef string `json:"projectRef"`
}

// ListResult is one page of documents
type ListResult struct {
	Items []model.Document `json:"items"`
	Total int64            `json:"total"`
}

// Stats counts documents per status
type Stats struct {
	Total          int64   `json:"total"`
	Draft          int64   `json:"draft"`
	ForReview      int64   `json:"forReview"`
	Revision       int64   `json:"revision"`
	Released       int64   `json:"released"`
	ReleasedAmount float64 `json:"releasedAmount"`
}

func (p ListParams) filters() []query.Filter {
	where := []query.Filter{}
	if s := strings.TrimSpace(p.Search); s != "" {
		where = append(where, query.AnyOf(
			query.Where("document_code", query.Contains, s),
			query.Where("title", query.Contains, s),
			query.Where("project_ref", query.Contains, s),
		))
	}
	if p.Type != "" {
		where = append(where, query.Eq("type", p.Type))
	}
	if p.Status != "" {
		where = append(where, query.Eq("status", p.Status))
	}
	if p.District != "" {
		where = append(where, query.Eq("district", p.District))
	}
	if p.ProjectRef != "" {
		where = append(where, query.Eq("project_ref", p.ProjectRef))
	}
	return where
}

// List returns one page of documents, newest first
func (s *Service) List(ctx context.Context, p ListParams) (*ListResult, error) {
	where := p.filters()
	return cache.Remember(ctx, s.queries, cache.Key(KeyList, p), func() (*ListResult, error) {
		total, err := s.documents.Count(ctx, where...)
		if err != nil {
			return nil, fmt.Errorf("failed to count documents: %w", err)
		}
		items, err := s.documents.FindMany(ctx, query.FindManyArgs{
			Where:   where,
			OrderBy: []query.Sort{query.Desc("created_at"), query.Asc("id")},
			Skip:    (p.Page - 1) * p.PageSize,
			Take:    p.PageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}
		return &ListResult{Items: items, Total: total}, nil
	})
}

// Stats counts documents per status and totals the released amount
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return cache.Remember(ctx, s.queries, KeyStats, func() (*Stats, error) {
		groups, err := s.documents.GroupBy(ctx, query.GroupByArgs{By: []string{"status"}})
		if err != nil {
			return nil, fmt.Errorf("failed to group documents: %w", err)
		}
		st := &Stats{}
		for _, g := range groups {
			st.Total += g.Count
			switch model.DocumentStatus(g.Key("status")) {
			case model.DocumentStatusDraft:
				st.Draft = g.Count
			case model.DocumentStatusForReview:
				st.ForReview = g.Count
			case model.DocumentStatusRevision:
				st.Revision = g.Count
			case model.DocumentStatusReleased:
				st.Released = g.Count
			}
		}

		released, err := s.documents.Aggregate(ctx, query.AggregateArgs{
			Where: []query.Filter{query.Eq("status", model.DocumentStatusReleased)},
			Sum:   []string{"amount"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to sum released amount: %w", err)
		}
		st.ReleasedAmount = released.Sum["amount"]
		return st, nil
	})
}
