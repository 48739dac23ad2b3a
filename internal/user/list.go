package user

import (
	"context"
	"fmt"
	"strings"

	"peo_admin/internal/cache"
	"peo_admin/internal/model"
	"peo_admin/internal/query"
)

// Row actions offered in the console
const (
	ActionSetActive   = "set-active"
	ActionSetInactive = "set-inactive"
	ActionDelete      = "delete"
)

// ListParams filters the account list
type ListParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Search   string `json:"search"`
	Role     string `json:"role"`
	Status   string `json:"status"`
	Division string `json:"division"`
}

// Item is one row of the account list
type Item struct {
	model.User
	Actions []string `json:"actions"`
}

// ListResult is one page of accounts
type ListResult struct {
	Items []Item `json:"items"`
	Total int64  `json:"total"`
}

// Stats counts accounts by status
type Stats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	Pending  int64 `json:"pending"`
}

// AllowedActions lists what actorID may do to target from the list.
// The highest-privilege account never offers any action.
func AllowedActions(target *model.User, actorID string) []string {
	actions := []string{}
	if target.Role.IsHighest() {
		return actions
	}
	if target.Status.CanTransitionTo(model.UserStatusActive) {
		actions = append(actions, ActionSetActive)
	}
	if target.ID != actorID {
		if target.Status.CanTransitionTo(model.UserStatusInactive) {
			actions = append(actions, ActionSetInactive)
		}
		actions = append(actions, ActionDelete)
	}
	return actions
}

func (p ListParams) filters() ([]query.Filter, error) {
	where := []query.Filter{}
	if s := strings.TrimSpace(p.Search); s != "" {
		where = append(where, query.AnyOf(
			query.Where("name", query.Contains, s),
			query.Where("email", query.Contains, s),
			query.Where("employee_id", query.Contains, s),
		))
	}
	if p.Role != "" {
		if !model.Role(p.Role).Valid() {
			return nil, ErrInvalidRole
		}
		where = append(where, query.Eq("role", p.Role))
	}
	if p.Status != "" {
		if !model.UserStatus(p.Status).Valid() {
			return nil, ErrInvalidStatus
		}
		where = append(where, query.Eq("status", p.Status))
	}
	if p.Division != "" {
		where = append(where, query.Eq("division", p.Division))
	}
	return where, nil
}

// List returns one page of accounts, newest first, with the row actions
// available to actorID. Page and PageSize must already be normalized.
func (s *Service) List(ctx context.Context, actorID string, p ListParams) (*ListResult, error) {
	where, err := p.filters()
	if err != nil {
		return nil, err
	}

	res, err := cache.Remember(ctx, s.queries, cache.Key(KeyList, p), func() (*ListResult, error) {
		total, err := s.users.Count(ctx, where...)
		if err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
		users, err := s.users.FindMany(ctx, query.FindManyArgs{
			Where:   where,
			OrderBy: []query.Sort{query.Desc("created_at"), query.Asc("id")},
			Skip:    (p.Page - 1) * p.PageSize,
			Take:    p.PageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		items := make([]Item, len(users))
		for i := range users {
			items[i] = Item{User: users[i]}
		}
		return &ListResult{Items: items, Total: total}, nil
	})
	if err != nil {
		return nil, err
	}

	for i := range res.Items {
		res.Items[i].Actions = AllowedActions(&res.Items[i].User, actorID)
	}
	return res, nil
}

// Stats counts accounts per status
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return cache.Remember(ctx, s.queries, KeyStats, func() (*Stats, error) {
		groups, err := s.users.GroupBy(ctx, query.GroupByArgs{By: []string{"status"}})
		if err != nil {
			return nil, fmt.Errorf("failed to group users: %w", err)
		}
		st := &Stats{}
		for _, g := range groups {
			st.Total += g.Count
			switch model.UserStatus(g.Key("status")) {
			case model.UserStatusActive:
				st.Active = g.Count
			case model.UserStatusInactive:
				st.Inactive = g.Count
			case model.UserStatusPending:
				st.Pending = g.Count
			}
		}
		return st, nil
	})
}

// Divisions returns the sorted distinct non-empty divisions
func (s *Service) Divisions(ctx context.Context) ([]string, error) {
	return cache.Remember(ctx, s.queries, KeyDivisions, func() ([]string, error) {
		divisions, err := s.users.Distinct(ctx, "division", query.Where("division", query.Not, ""))
		if err != nil {
			return nil, fmt.Errorf("failed to list divisions: %w", err)
		}
		return divisions, nil
	})
}
