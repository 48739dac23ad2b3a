// Package document manages procurement documents and their review cycle.
package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"peo_admin/internal/cache"
	"peo_admin/internal/db"
	"peo_admin/internal/model"
	"peo_admin/internal/query"
	"peo_admin/internal/storage"
)

// Query groups dropped after every document mutation
const (
	KeyList  = "documents:list"
	KeyStats = "documents:stats"
)

// uploadDir is the storage subdirectory for document files
const uploadDir = "documents"

var (
	ErrNotFound          = errors.New("document not found")
	ErrCodeTaken         = errors.New("document code already exists")
	ErrCodeRequired      = errors.New("document code is required")
	ErrTitleRequired     = errors.New("title is required")
	ErrInvalidType       = errors.New("invalid document type")
	ErrInvalidStatus     = errors.New("invalid document status")
	ErrInvalidDistrict   = errors.New("invalid district")
	ErrNegativeAmount    = errors.New("amount must not be negative")
	ErrReleased          = errors.New("released documents cannot be changed")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrConcurrentChange  = errors.New("document was modified concurrently, reload and retry")
	ErrNoFile            = errors.New("document has no file")
)

// Service manages documents and their files
type Service struct {
	db        *gorm.DB
	documents *query.Client[model.Document]
	files     *storage.Local
	queries   cache.Queries
	logger    *logrus.Entry
	now       func() time.Time
}

// NewService creates a document service storing files in files
func NewService(gdb *gorm.DB, files *storage.Local, queries cache.Queries, logger *logrus.Entry) *Service {
	return &Service{
		db:        gdb,
		documents: query.MustNew[model.Document](gdb),
		files:     files,
		queries:   queries,
		logger:    logger.WithField("component", "document"),
		now:       time.Now,
	}
}

// Input is the document form. On update nil fields are left alone; an
// empty ProjectRef clears it.
type Input struct {
	DocumentCode *string  `json:"documentCode"`
	Type         *string  `json:"type"`
	Title        *string  `json:"title"`
	Amount       *float64 `json:"amount"`
	District     *string  `json:"district"`
	ProjectRef   *string  `json:"projectRef"`
}

func (in *Input) updates() (map[string]any, error) {
	u := map[string]any{}
	if in.DocumentCode != nil {
		code := strings.TrimSpace(*in.DocumentCode)
		if code == "" {
			return nil, ErrCodeRequired
		}
		u["document_code"] = code
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		u["title"] = title
	}
	if in.Type != nil {
		t := model.DocumentType(*in.Type)
		if t != model.DocumentTypePOW && t != model.DocumentTypePurchaseRequest {
			return nil, ErrInvalidType
		}
		u["type"] = t
	}
	if in.District != nil {
		d := model.District(*in.District)
		switch d {
		case model.District1, model.District2, model.District3, model.District4:
		default:
			return nil, ErrInvalidDistrict
		}
		u["district"] = d
	}
	if in.Amount != nil {
		if *in.Amount < 0 {
			return nil, ErrNegativeAmount
		}
		u["amount"] = *in.Amount
	}
	if in.ProjectRef != nil {
		u["project_ref"] = model.StrPtr(strings.TrimSpace(*in.ProjectRef))
	}
	return u, nil
}

func (s *Service) ensureCodeFree(ctx context.Context, code, excludeID string) error {
	where := []query.Filter{query.Eq("document_code", code)}
	if excludeID != "" {
		where = append(where, query.Where("id", query.Not, excludeID))
	}
	taken, err := s.documents.Exists(ctx, where...)
	if err != nil {
		return fmt.Errorf("failed to check document code: %w", err)
	}
	if taken {
		return ErrCodeTaken
	}
	return nil
}

// Create inserts a DRAFT document owned by createdBy
func (s *Service) Create(ctx context.Context, createdBy string, in Input) (*model.Document, error) {
	if in.DocumentCode == nil {
		return nil, ErrCodeRequired
	}
	if in.Title == nil {
		return nil, ErrTitleRequired
	}
	if in.Type == nil {
		return nil, ErrInvalidType
	}
	if in.District == nil {
		return nil, ErrInvalidDistrict
	}
	values, err := in.updates()
	if err != nil {
		return nil, err
	}

	d := &model.Document{
		DocumentCode: values["document_code"].(string),
		Type:         values["type"].(model.DocumentType),
		Title:        values["title"].(string),
		Status:       model.DocumentStatusDraft,
		District:     values["district"].(model.District),
		CreatedBy:    createdBy,
	}
	if v, ok := values["amount"].(float64); ok {
		d.Amount = &v
	}
	if v, ok := values["project_ref"].(*string); ok {
		d.ProjectRef = v
	}

	if err := s.ensureCodeFree(ctx, d.DocumentCode, ""); err != nil {
		return nil, err
	}
	if err := s.documents.Create(ctx, d); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, ErrCodeTaken
		}
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.invalidate(ctx)
	s.logger.WithFields(logrus.Fields{"document_id": d.ID, "code": d.DocumentCode, "created_by": createdBy}).Info("document created")
	return d, nil
}

// Get returns one document with its creator
func (s *Service) Get(ctx context.Context, id string) (*model.Document, error) {
	d, err := s.documents.FindUnique(ctx, id, "Creator")
	if err != nil {
		if errors.Is(err, query.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return d, nil
}

// Update applies a partial change to a document that is not yet released
func (s *Service) Update(ctx context.Context, id string, in Input) (*model.Document, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == model.DocumentStatusReleased {
		return nil, ErrReleased
	}
	values, err := in.updates()
	if err != nil {
		return nil, err
	}
	if code, ok := values["document_code"].(string); ok {
		if err := s.ensureCodeFree(ctx, code, id); err != nil {
			return nil, err
		}
	}

	if len(values) > 0 {
		n, err := s.documents.UpdateMany(ctx,
			[]query.Filter{query.Eq("id", id), query.Where("status", query.Not, model.DocumentStatusReleased)},
			values,
		)
		if err != nil {
			if db.IsDuplicateKey(err) {
				return nil, ErrCodeTaken
			}
			return nil, fmt.Errorf("failed to update document: %w", err)
		}
		if n == 0 {
			return nil, ErrReleased
		}
		s.invalidate(ctx)
		s.logger.WithField("document_id", id).Info("document updated")
	}
	return s.Get(ctx, id)
}

// UpdateStatus moves a document through review. Entering RELEASED stamps
// the release time, the releasing account and the remarks.
func (s *Service) UpdateStatus(ctx context.Context, actorID, id string, next model.DocumentStatus, remarks string) (*model.Document, error) {
	switch next {
	case model.DocumentStatusDraft, model.DocumentStatusForReview, model.DocumentStatusRevision, model.DocumentStatusReleased:
	default:
		return nil, ErrInvalidStatus
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		docs := s.documents.WithTx(tx)
		current, err := docs.FindUnique(ctx, id)
		if err != nil {
			if errors.Is(err, query.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load document: %w", err)
		}
		if current.Status == model.DocumentStatusReleased {
			return ErrReleased
		}
		if !current.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next)
		}

		values := map[string]any{"status": next}
		if next == model.DocumentStatusReleased {
			values["released_at"] = s.now()
			values["released_by"] = actorID
			values["release_remarks"] = model.StrPtr(strings.TrimSpace(remarks))
		}
		n, err := docs.UpdateMany(ctx, []query.Filter{query.Eq("id", id), query.Eq("status", current.Status)}, values)
		if err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		if n == 0 {
			return ErrConcurrentChange
		}

		s.logger.WithFields(logrus.Fields{
			"document_id": id,
			"actor":       actorID,
			"from":        current.Status,
			"to":          next,
		}).Info("document status changed")
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Upload stores a file for the document, replacing any previous one
func (s *Service) Upload(ctx context.Context, id, fileName string, r io.Reader) (*model.Document, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == model.DocumentStatusReleased {
		return nil, ErrReleased
	}

	rel, size, err := s.files.Save(uploadDir, fileName, r)
	if err != nil {
		return nil, err
	}

	n, err := s.documents.UpdateMany(ctx,
		[]query.Filter{query.Eq("id", id), query.Where("status", query.Not, model.DocumentStatusReleased)},
		map[string]any{"file_path": rel, "file_name": fileName, "file_size": size},
	)
	if err != nil || n == 0 {
		if rmErr := s.files.Remove(rel); rmErr != nil {
			s.logger.WithError(rmErr).Warnf("failed to remove orphan upload %s", rel)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to record upload: %w", err)
		}
		return nil, ErrReleased
	}

	if current.FilePath != nil {
		if err := s.files.Remove(*current.FilePath); err != nil {
			s.logger.WithError(err).Warnf("failed to remove replaced file %s", *current.FilePath)
		}
	}

	s.invalidate(ctx)
	s.logger.WithFields(logrus.Fields{"document_id": id, "path": rel, "size": size}).Info("document file uploaded")
	return s.Get(ctx, id)
}

// File returns the document and the on-disk path of its file
func (s *Service) File(ctx context.Context, id string) (*model.Document, string, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if d.FilePath == nil {
		return nil, "", ErrNoFile
	}
	full, err := s.files.Path(*d.FilePath)
	if err != nil {
		return nil, "", err
	}
	return d, full, nil
}

// Delete removes the given documents and their files
func (s *Service) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	where := query.Where("id", query.In, ids)
	docs, err := s.documents.FindMany(ctx, query.FindManyArgs{Where: []query.Filter{where}, Select: []string{"id", "file_path"}})
	if err != nil {
		return 0, fmt.Errorf("failed to load documents: %w", err)
	}
	n, err := s.documents.DeleteMany(ctx, where)
	if err != nil {
		return 0, fmt.Errorf("failed to delete documents: %w", err)
	}

	for _, d := range docs {
		if d.FilePath == nil {
			continue
		}
		if err := s.files.Remove(*d.FilePath); err != nil {
			s.logger.WithError(err).Warnf("failed to remove file %s", *d.FilePath)
		}
	}
	if n > 0 {
		s.invalidate(ctx)
		s.logger.WithField("count", n).Info("documents deleted")
	}
	return n, nil
}

func (s *Service) invalidate(ctx context.Context) {
	s.queries.Invalidate(ctx, KeyList, KeyStats)
}
