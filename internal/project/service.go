// Package project manages infrastructure project records.
package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"peo_admin/internal/cache"
	"peo_admin/internal/db"
	"peo_admin/internal/model"
	"peo_admin/internal/query"
)

// Query groups dropped after every project mutation
const (
	KeyList  = "projects:list"
	KeyStats = "projects:stats"
)

var (
	ErrNotFound       = errors.New("project not found")
	ErrCodeTaken      = errors.New("project code already exists")
	ErrCodeRequired   = errors.New("project code is required")
	ErrTitleRequired  = errors.New("title is required")
	ErrInvalidEnum    = errors.New("invalid enum value")
	ErrNegativeNumber = errors.New("numeric fields must not be negative")
)

// Service manages projects
type Service struct {
	projects *query.Client[model.Project]
	queries  cache.Queries
	logger   *logrus.Entry
}

// NewService creates a project service
func NewService(gdb *gorm.DB, queries cache.Queries, logger *logrus.Entry) *Service {
	return &Service{
		projects: query.MustNew[model.Project](gdb),
		queries:  queries,
		logger:   logger.WithField("component", "project"),
	}
}

// Input is the project form. On update nil fields are left alone.
type Input struct {
	ProjectCode        *string  `json:"projectCode"`
	Title              *string  `json:"title"`
	SubType            *string  `json:"subType"`
	ImplementationMode *string  `json:"implementationMode"`
	District           *string  `json:"district"`
	FundSource         *string  `json:"fundSource"`
	Appropriation      *float64 `json:"appropriation"`
	ContractCost       *float64 `json:"contractCost"`
	DurationDays       *int     `json:"durationDays"`
	DaysElapsed        *int     `json:"daysElapsed"`
	ManpowerCount      *int     `json:"manpowerCount"`
	Barangay           *string  `json:"barangay"`
	Municipality       *string  `json:"municipality"`
	LocationRemarks    *string  `json:"locationRemarks"`
	Status             *string  `json:"status"`
}

var (
	subTypes = []model.ProjectSubType{
		model.ProjectSubTypeRoad, model.ProjectSubTypeBridge, model.ProjectSubTypeBuilding,
		model.ProjectSubTypeWaterSystem, model.ProjectSubTypeFloodControl, model.ProjectSubTypeOthers,
	}
	modes = []model.ImplementationMode{
		model.ImplementationByAdministration, model.ImplementationByContract,
	}
	districts = []model.District{
		model.District1, model.District2, model.District3, model.District4,
	}
	fundSources = []model.FundSource{
		model.FundSourceGeneralFund, model.FundSourceDevelopmentFund20, model.FundSourceSpecialEducationFund,
		model.FundSourceTrustFund, model.FundSourceNationalGrant, model.FundSourceOthers,
	}
	statuses = []model.ProjectStatus{
		model.ProjectStatusNotYetStarted, model.ProjectStatusOngoing,
		model.ProjectStatusCompleted, model.ProjectStatusSuspended,
	}
)

func oneOf[T ~string](field string, v string, allowed []T) (T, error) {
	for _, a := range allowed {
		if string(a) == v {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %s=%q", ErrInvalidEnum, field, v)
}

// updates validates in and returns the column assignments it describes
func (in *Input) updates() (map[string]any, error) {
	u := map[string]any{}

	if in.ProjectCode != nil {
		code := strings.TrimSpace(*in.ProjectCode)
		if code == "" {
			return nil, ErrCodeRequired
		}
		u["project_code"] = code
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		u["title"] = title
	}
	if in.SubType != nil {
		if *in.SubType == "" {
			u["sub_type"] = nil
		} else {
			v, err := oneOf("subType", *in.SubType, subTypes)
			if err != nil {
				return nil, err
			}
			u["sub_type"] = v
		}
	}
	if in.ImplementationMode != nil {
		v, err := oneOf("implementationMode", *in.ImplementationMode, modes)
		if err != nil {
			return nil, err
		}
		u["implementation_mode"] = v
	}
	if in.District != nil {
		v, err := oneOf("district", *in.District, districts)
		if err != nil {
			return nil, err
		}
		u["district"] = v
	}
	if in.FundSource != nil {
		v, err := oneOf("fundSource", *in.FundSource, fundSources)
		if err != nil {
			return nil, err
		}
		u["fund_source"] = v
	}
	if in.Status != nil {
		v, err := oneOf("status", *in.Status, statuses)
		if err != nil {
			return nil, err
		}
		u["status"] = v
	}

	for col, f := range map[string]*float64{"appropriation": in.Appropriation, "contract_cost": in.ContractCost} {
		if f == nil {
			continue
		}
		if *f < 0 {
			return nil, ErrNegativeNumber
		}
		u[col] = *f
	}
	for col, n := range map[string]*int{"duration_days": in.DurationDays, "days_elapsed": in.DaysElapsed, "manpower_count": in.ManpowerCount} {
		if n == nil {
			continue
		}
		if *n < 0 {
			return nil, ErrNegativeNumber
		}
		u[col] = *n
	}

	for col, s := range map[string]*string{"barangay": in.Barangay, "municipality": in.Municipality, "location_remarks": in.LocationRemarks} {
		if s != nil {
			u[col] = strings.TrimSpace(*s)
		}
	}
	return u, nil
}

func (s *Service) ensureCodeFree(ctx context.Context, code, excludeID string) error {
	where := []query.Filter{query.Eq("project_code", code)}
	if excludeID != "" {
		where = append(where, query.Where("id", query.Not, excludeID))
	}
	taken, err := s.projects.Exists(ctx, where...)
	if err != nil {
		return fmt.Errorf("failed to check project code: %w", err)
	}
	if taken {
		return ErrCodeTaken
	}
	return nil
}

// Create inserts a project owned by createdBy
func (s *Service) Create(ctx context.Context, createdBy string, in Input) (*model.Project, error) {
	for _, required := range []struct {
		v   *string
		err error
	}{
		{in.ProjectCode, ErrCodeRequired},
		{in.Title, ErrTitleRequired},
	} {
		if required.v == nil {
			return nil, required.err
		}
	}
	for field, v := range map[string]*string{"implementationMode": in.ImplementationMode, "district": in.District, "fundSource": in.FundSource} {
		if v == nil {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidEnum, field)
		}
	}

	values, err := in.updates()
	if err != nil {
		return nil, err
	}
	if err := s.ensureCodeFree(ctx, values["project_code"].(string), ""); err != nil {
		return nil, err
	}

	p := &model.Project{
		ProjectCode:        values["project_code"].(string),
		Title:              values["title"].(string),
		ImplementationMode: values["implementation_mode"].(model.ImplementationMode),
		District:           values["district"].(model.District),
		FundSource:         values["fund_source"].(model.FundSource),
		Status:             model.ProjectStatusNotYetStarted,
		CreatedBy:          createdBy,
	}
	if v, ok := values["sub_type"].(model.ProjectSubType); ok {
		p.SubType = &v
	}
	if v, ok := values["status"].(model.ProjectStatus); ok {
		p.Status = v
	}
	if v, ok := values["appropriation"].(float64); ok {
		p.Appropriation = v
	}
	if v, ok := values["contract_cost"].(float64); ok {
		p.ContractCost = v
	}
	if v, ok := values["duration_days"].(int); ok {
		p.DurationDays = v
	}
	if v, ok := values["days_elapsed"].(int); ok {
		p.DaysElapsed = v
	}
	if v, ok := values["manpower_count"].(int); ok {
		p.ManpowerCount = v
	}
	p.Barangay, _ = values["barangay"].(string)
	p.Municipality, _ = values["municipality"].(string)
	p.LocationRemarks, _ = values["location_remarks"].(string)

	if err := s.projects.Create(ctx, p); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, ErrCodeTaken
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.invalidate(ctx)
	s.logger.WithFields(logrus.Fields{"project_id": p.ID, "code": p.ProjectCode, "created_by": createdBy}).Info("project created")
	return p, nil
}

// Get returns one project with its creator
func (s *Service) Get(ctx context.Context, id string) (*model.Project, error) {
	p, err := s.projects.FindUnique(ctx, id, "Creator")
	if err != nil {
		if errors.Is(err, query.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return p, nil
}

// Update applies a partial change
func (s *Service) Update(ctx context.Context, id string, in Input) (*model.Project, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	values, err := in.updates()
	if err != nil {
		return nil, err
	}
	if code, ok := values["project_code"].(string); ok {
		if err := s.ensureCodeFree(ctx, code, id); err != nil {
			return nil, err
		}
	}

	if len(values) > 0 {
		if err := s.projects.Update(ctx, id, values); err != nil {
			if db.IsDuplicateKey(err) {
				return nil, ErrCodeTaken
			}
			return nil, fmt.Errorf("failed to update project: %w", err)
		}
		s.invalidate(ctx)
		s.logger.WithField("project_id", id).Info("project updated")
	}
	return s.Get(ctx, id)
}

// Delete removes the given projects and returns how many were deleted
func (s *Service) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.projects.DeleteMany(ctx, query.Where("id", query.In, ids))
	if err != nil {
		return 0, fmt.Errorf("failed to delete projects: %w", err)
	}
	if n > 0 {
		s.invalidate(ctx)
		s.logger.WithField("count", n).Info("projects deleted")
	}
	return n, nil
}

func (s *Service) invalidate(ctx context.Context) {
	s.queries.Invalidate(ctx, KeyList, KeyStats)
}
