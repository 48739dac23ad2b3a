// Package post manages the demo post entity.
package post

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"peo_admin/internal/cache"
	"peo_admin/internal/model"
	"peo_admin/internal/query"
)

// KeyList is the query group dropped after every post mutation
const KeyList = "posts:list"

var (
	ErrNotFound     = errors.New("post not found")
	ErrNameRequired = errors.New("name is required")
)

// Service manages posts
type Service struct {
	posts   *query.Client[model.Post]
	queries cache.Queries
	logger  *logrus.Entry
}

// NewService creates a post service
func NewService(gdb *gorm.DB, queries cache.Queries, logger *logrus.Entry) *Service {
	return &Service{
		posts:   query.MustNew[model.Post](gdb),
		queries: queries,
		logger:  logger.WithField("component", "post"),
	}
}

// ListParams filters the post list
type ListParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Search   string `json:"search"`
}

// ListResult is one page of posts
type ListResult struct {
	Items []model.Post `json:"items"`
	Total int64        `json:"total"`
}

// List returns one page of posts, newest first
func (s *Service) List(ctx context.Context, p ListParams) (*ListResult, error) {
	var where []query.Filter
	if search := strings.TrimSpace(p.Search); search != "" {
		where = append(where, query.Where("name", query.Contains, search))
	}
	return cache.Remember(ctx, s.queries, cache.Key(KeyList, p), func() (*ListResult, error) {
		total, err := s.posts.Count(ctx, where...)
		if err != nil {
			return nil, fmt.Errorf("failed to count posts: %w", err)
		}
		items, err := s.posts.FindMany(ctx, query.FindManyArgs{
			Where:   where,
			OrderBy: []query.Sort{query.Desc("id")},
			Skip:    (p.Page - 1) * p.PageSize,
			Take:    p.PageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list posts: %w", err)
		}
		return &ListResult{Items: items, Total: total}, nil
	})
}

// Create inserts a post
func (s *Service) Create(ctx context.Context, createdBy, name string) (*model.Post, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	p := &model.Post{Name: name, CreatedBy: createdBy}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	s.queries.Invalidate(ctx, KeyList)
	return p, nil
}

// Update renames a post
func (s *Service) Update(ctx context.Context, id int, name string) (*model.Post, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := s.posts.Update(ctx, id, map[string]any{"name": name}); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	p, err := s.posts.FindUnique(ctx, id)
	if err != nil {
		if errors.Is(err, query.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	s.queries.Invalidate(ctx, KeyList)
	return p, nil
}

// Delete removes the given posts and returns how many were deleted
func (s *Service) Delete(ctx context.Context, ids []int) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.posts.DeleteMany(ctx, query.Where("id", query.In, ids))
	if err != nil {
		return 0, fmt.Errorf("failed to delete posts: %w", err)
	}
	if n > 0 {
		s.queries.Invalidate(ctx, KeyList)
		s.logger.WithField("count", n).Info("posts deleted")
	}
	return n, nil
}
