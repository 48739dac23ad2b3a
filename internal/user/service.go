// Package user implements the account management console.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"peo_admin/internal/auth"
	"peo_admin/internal/cache"
	"peo_admin/internal/db"
	"peo_admin/internal/model"
	"peo_admin/internal/query"
)

// Query groups dropped after every account mutation
const (
	KeyList      = "users:list"
	KeyStats     = "users:stats"
	KeyDivisions = "users:divisions"
)

// InvalidationKeys returns the groups a user mutation invalidates
func InvalidationKeys() []string {
	return []string{KeyList, KeyStats, KeyDivisions}
}

// Actor is the authenticated account performing an operation
type Actor struct {
	ID   string
	Role model.Role
}

// Service manages user accounts
type Service struct {
	db      *gorm.DB
	users   *query.Client[model.User]
	queries cache.Queries
	logger  *logrus.Entry
}

// NewService creates a user service
func NewService(gdb *gorm.DB, queries cache.Queries, logger *logrus.Entry) *Service {
	return &Service{
		db:      gdb,
		users:   query.MustNew[model.User](gdb),
		queries: queries,
		logger:  logger.WithField("component", "user"),
	}
}

// CreateInput is the account form submitted by an administrator
type CreateInput struct {
	Name            string
	Sex             string
	Email           string
	EmployeeID      string
	Designation     string
	Division        string
	Role            string
	Password        string
	ConfirmPassword string
	Status          string
}

// CreateResult is the created account plus the strength of its password
type CreateResult struct {
	User     *model.User   `json:"user"`
	Strength auth.Strength `json:"passwordStrength"`
}

// UpdateInput carries the fields to change; nil fields are left alone
type UpdateInput struct {
	ID              string
	Name            *string
	Sex             *string
	Email           *string
	EmployeeID      *string
	Designation     *string
	Division        *string
	Role            *string
	Password        *string
	ConfirmPassword *string
}

func validatePassword(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	if len([]rune(password)) < auth.MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// validateCreate checks the form in the order the console reports problems
func validateCreate(in *CreateInput) (model.Role, model.Sex, model.UserStatus, error) {
	if in.Password != in.ConfirmPassword {
		return "", "", "", ErrPasswordMismatch
	}
	if strings.TrimSpace(in.Sex) == "" {
		return "", "", "", ErrSexRequired
	}
	if strings.TrimSpace(in.Email) == "" {
		return "", "", "", ErrEmailRequired
	}

	sex := model.Sex(in.Sex)
	if !sex.Valid() {
		return "", "", "", ErrInvalidSex
	}
	role := model.RoleStaff
	if in.Role != "" {
		role = model.Role(in.Role)
	}
	if !role.Valid() {
		return "", "", "", ErrInvalidRole
	}
	status := model.UserStatusPending
	if in.Status != "" {
		status = model.UserStatus(in.Status)
	}
	if !status.Valid() {
		return "", "", "", ErrInvalidStatus
	}
	if err := validatePassword(in.Password, in.ConfirmPassword); err != nil {
		return "", "", "", err
	}
	return role, sex, status, nil
}

func (s *Service) ensureUnique(ctx context.Context, excludeID, email string, employeeID *string) error {
	where := func(f query.Filter) []query.Filter {
		out := []query.Filter{f}
		if excludeID != "" {
			out = append(out, query.Where("id", query.Not, excludeID))
		}
		return out
	}

	if email != "" {
		taken, err := s.users.Exists(ctx, where(query.Eq("email", email))...)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return ErrEmailTaken
		}
	}
	if employeeID != nil {
		taken, err := s.users.Exists(ctx, where(query.Eq("employee_id", *employeeID))...)
		if err != nil {
			return fmt.Errorf("failed to check employee id: %w", err)
		}
		if taken {
			return ErrEmployeeIDTaken
		}
	}
	return nil
}

// Create validates the form and inserts a new account
func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (*CreateResult, error) {
	role, sex, status, err := validateCreate(&in)
	if err != nil {
		return nil, err
	}
	if role.Rank() < actor.Role.Rank() {
		return nil, ErrRoleAboveActor
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	employeeID := model.StrPtr(strings.TrimSpace(in.EmployeeID))
	if err := s.ensureUnique(ctx, "", email, employeeID); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &model.User{
		Name:         model.StrPtr(strings.TrimSpace(in.Name)),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		EmployeeID:   employeeID,
		Designation:  strings.TrimSpace(in.Designation),
		Division:     strings.TrimSpace(in.Division),
		Sex:          &sex,
		Status:       status,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.invalidate(ctx)
	s.logger.WithFields(logrus.Fields{"user_id": u.ID, "actor": actor.ID, "role": role}).Info("user created")

	return &CreateResult{User: u, Strength: auth.PasswordStrength(in.Password)}, nil
}

func (s *Service) find(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.FindUnique(ctx, id)
	if err != nil {
		if errors.Is(err, query.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

// Get returns one account
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	return s.find(ctx, id)
}

// Update applies a partial change to an account. A role change ends the
// account's sessions.
func (s *Service) Update(ctx context.Context, actor Actor, in UpdateInput) (*model.User, error) {
	target, err := s.find(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if target.Role.IsHighest() && !actor.Role.IsHighest() {
		return nil, ErrProtected
	}

	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = model.StrPtr(strings.TrimSpace(*in.Name))
	}
	if in.Sex != nil {
		if *in.Sex == "" {
			return nil, ErrSexRequired
		}
		sex := model.Sex(*in.Sex)
		if !sex.Valid() {
			return nil, ErrInvalidSex
		}
		updates["sex"] = sex
	}
	var email string
	if in.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" {
			return nil, ErrEmailRequired
		}
		updates["email"] = email
	}
	var employeeID *string
	if in.EmployeeID != nil {
		employeeID = model.StrPtr(strings.TrimSpace(*in.EmployeeID))
		updates["employee_id"] = employeeID
	}
	if in.Designation != nil {
		updates["designation"] = strings.TrimSpace(*in.Designation)
	}
	if in.Division != nil {
		updates["division"] = strings.TrimSpace(*in.Division)
	}
	roleChanged := false
	if in.Role != nil {
		role := model.Role(*in.Role)
		if !role.Valid() {
			return nil, ErrInvalidRole
		}
		if role.Rank() < actor.Role.Rank() {
			return nil, ErrRoleAboveActor
		}
		updates["role"] = role
		roleChanged = role != target.Role
	}
	if in.Password != nil {
		confirm := ""
		if in.ConfirmPassword != nil {
			confirm = *in.ConfirmPassword
		}
		if err := validatePassword(*in.Password, confirm); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updates["password_hash"] = hash
	}

	if len(updates) == 0 {
		return target, nil
	}
	if err := s.ensureUnique(ctx, target.ID, email, employeeID); err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Update(ctx, target.ID, updates); err != nil {
			if db.IsDuplicateKey(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to update user: %w", err)
		}
		// tokens carry the role, so a role change ends every session
		if roleChanged {
			if _, err := query.MustNew[model.Session](tx).DeleteMany(ctx, query.Eq("user_id", target.ID)); err != nil {
				return fmt.Errorf("failed to end sessions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.WithFields(logrus.Fields{"user_id": target.ID, "actor": actor.ID}).Info("user updated")
	return s.find(ctx, target.ID)
}

// UpdateStatus moves an account through its status machine. Setting the
// current status again succeeds without writing. Deactivation ends the
// account's sessions.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, id string, status model.UserStatus) (*model.User, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	target, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if target.Role.IsHighest() {
		return nil, ErrProtected
	}
	if target.ID == actor.ID && status != model.UserStatusActive {
		return nil, ErrSelfAction
	}
	if target.Status == status {
		s.invalidate(ctx)
		return target, nil
	}
	if !target.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, target.Status, status)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.users.WithTx(tx).UpdateMany(ctx,
			[]query.Filter{query.Eq("id", target.ID), query.Eq("status", target.Status)},
			map[string]any{"status": status},
		)
		if err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		if n == 0 {
			return ErrConcurrentChange
		}
		if status == model.UserStatusInactive {
			if _, err := query.MustNew[model.Session](tx).DeleteMany(ctx, query.Eq("user_id", target.ID)); err != nil {
				return fmt.Errorf("failed to end sessions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.WithFields(logrus.Fields{
		"user_id": target.ID,
		"actor":   actor.ID,
		"from":    target.Status,
		"to":      status,
	}).Info("user status changed")

	target.Status = status
	return target, nil
}

// Delete removes an account with its sessions and posts. Accounts that
// still own projects or documents are kept.
func (s *Service) Delete(ctx context.Context, actor Actor, id string) error {
	target, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if target.Role.IsHighest() {
		return ErrProtected
	}
	if target.ID == actor.ID {
		return ErrSelfAction
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, owned := range []func() (bool, error){
			func() (bool, error) { return query.MustNew[model.Project](tx).Exists(ctx, query.Eq("created_by", target.ID)) },
			func() (bool, error) { return query.MustNew[model.Document](tx).Exists(ctx, query.Eq("created_by", target.ID)) },
		} {
			has, err := owned()
			if err != nil {
				return fmt.Errorf("failed to check owned records: %w", err)
			}
			if has {
				return ErrHasRecords
			}
		}

		if _, err := query.MustNew[model.Session](tx).DeleteMany(ctx, query.Eq("user_id", target.ID)); err != nil {
			return fmt.Errorf("failed to delete sessions: %w", err)
		}
		if _, err := query.MustNew[model.Post](tx).DeleteMany(ctx, query.Eq("created_by", target.ID)); err != nil {
			return fmt.Errorf("failed to delete posts: %w", err)
		}
		n, err := s.users.WithTx(tx).Delete(ctx, target.ID)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrHasRecords
			}
			return fmt.Errorf("failed to delete user: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	s.logger.WithFields(logrus.Fields{"user_id": target.ID, "actor": actor.ID}).Info("user deleted")
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	s.queries.Invalidate(ctx, InvalidationKeys()...)
}
