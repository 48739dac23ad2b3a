package project

import (
	"context"
	"fmt"
	"strings"

	"peo_admin/internal/cache"
	"peo_admin/internal/model"
	"peo_admin/internal/query"
)

// ListParams filters the project list
type ListParams struct {
	Page               int    `json:"page"`
	PageSize           int    `json:"pageSize"`
	Search             string `json:"search"`
	Status             string `json:"status"`
	District           string `json:"district"`
	FundSource         string `json:"fundSource"`
	ImplementationMode string `json:"implementationMode"`
}

// ListResult is one page of projects
type ListResult struct {
	Items []model.Project `json:"items"`
	Total int64           `json:"total"`
}

// Stats is the dashboard project summary
type Stats struct {
	Total             int64   `json:"total"`
	NotYetStarted     int64   `json:"notYetStarted"`
	Ongoing           int64   `json:"ongoing"`
	Completed         int64   `json:"completed"`
	Suspended         int64   `json:"suspended"`
	TotalContractCost float64 `json:"totalContractCost"`
}

func (p ListParams) filters() []query.Filter {
	where := []query.Filter{}
	if s := strings.TrimSpace(p.Search); s != "" {
		where = append(where, query.AnyOf(
			query.Where("project_code", query.Contains, s),
			query.Where("title", query.Contains, s),
			query.Where("barangay", query.Contains, s),
			query.Where("municipality", query.Contains, s),
		))
	}
	for col, v := range map[string]string{
		"status":              p.Status,
		"district":            p.District,
		"fund_source":         p.FundSource,
		"implementation_mode": p.ImplementationMode,
	} {
		if v != "" {
			where = append(where, query.Eq(col, v))
		}
	}
	return where
}

// List returns one page of projects, newest first
func (s *Service) List(ctx context.Context, p ListParams) (*ListResult, error) {
	where := p.filters()
	return cache.Remember(ctx, s.queries, cache.Key(KeyList, p), func() (*ListResult, error) {
		total, err := s.projects.Count(ctx, where...)
		if err != nil {
			return nil, fmt.Errorf("failed to count projects: %w", err)
		}
		items, err := s.projects.FindMany(ctx, query.FindManyArgs{
			Where:   where,
			OrderBy: []query.Sort{query.Desc("created_at"), query.Asc("id")},
			Skip:    (p.Page - 1) * p.PageSize,
			Take:    p.PageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}
		return &ListResult{Items: items, Total: total}, nil
	})
}

// Stats counts projects per status
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return cache.Remember(ctx, s.queries, KeyStats, func() (*Stats, error) {
		groups, err := s.projects.GroupBy(ctx, query.GroupByArgs{
			By:  []string{"status"},
			Sum: []string{"contract_cost"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to group projects: %w", err)
		}
		st := &Stats{}
		for _, g := range groups {
			st.Total += g.Count
			st.TotalContractCost += g.Sum["contract_cost"]
			switch model.ProjectStatus(g.Key("status")) {
			case model.ProjectStatusNotYetStarted:
				st.NotYetStarted = g.Count
			case model.ProjectStatusOngoing:
				st.Ongoing = g.Count
			case model.ProjectStatusCompleted:
				st.Completed = g.Count
			case model.ProjectStatusSuspended:
				st.Suspended = g.Count
			}
		}
		return st, nil
	})
}
