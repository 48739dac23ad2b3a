package users

import (
	"peo_admin/api/v1/middleware"
	"peo_admin/internal/auth"
	"peo_admin/internal/httpx"
	"peo_admin/internal/model"
	"peo_admin/internal/user"

	"github.com/gin-gonic/gin"
)

// ListRequest represents list users request
type ListRequest struct {
	httpx.PageQuery
	Search   string `form:"search"`
	Role     string `form:"role"`
	Status   string `form:"status"`
	Division string `form:"division"`
}

// CreateRequest represents create user request
type CreateRequest struct {
	// Personal information
	Name  string `json:"name"`
	Sex   string `json:"sex"`
	Email string `json:"email" binding:"required,email"`

	// Employment information
	EmployeeID  string `json:"employeeId"`
	Designation string `json:"designation"`
	Division    string `json:"division"`
	Role        string `json:"role"`

	// Credentials
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword"`
	Status          string `json:"status"`
}

// UpdateRequest represents update user request
type UpdateRequest struct {
	ID              string  `json:"id" binding:"required"`
	Name            *string `json:"name"`
	Sex             *string `json:"sex"`
	Email           *string `json:"email" binding:"omitempty,email"`
	EmployeeID      *string `json:"employeeId"`
	Designation     *string `json:"designation"`
	Division        *string `json:"division"`
	Role            *string `json:"role"`
	Password        *string `json:"password"`
	ConfirmPassword *string `json:"confirmPassword"`
}

// UpdateStatusRequest represents update user status request
type UpdateStatusRequest struct {
	ID     string `json:"id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// DeleteRequest represents delete user request
type DeleteRequest struct {
	ID string `json:"id" binding:"required"`
}

// PasswordStrengthRequest represents password strength request
type PasswordStrengthRequest struct {
	Password string `json:"password"`
}

var errorMap = httpx.ErrorMap{
	{Target: user.ErrPasswordMismatch, Build: httpx.ErrParamInvalid},
	{Target: user.ErrSexRequired, Build: httpx.ErrParamMissing},
	{Target: user.ErrEmailRequired, Build: httpx.ErrParamMissing},
	{Target: user.ErrPasswordTooShort, Build: httpx.ErrParamIllegal},
	{Target: user.ErrInvalidRole, Build: httpx.ErrParamIllegal},
	{Target: user.ErrInvalidSex, Build: httpx.ErrParamIllegal},
	{Target: user.ErrInvalidStatus, Build: httpx.ErrParamIllegal},
	{Target: user.ErrNotFound, Build: httpx.ErrNotFound},
	{Target: user.ErrEmailTaken, Build: httpx.ErrAlreadyExists},
	{Target: user.ErrEmployeeIDTaken, Build: httpx.ErrAlreadyExists},
	{Target: user.ErrDuplicate, Build: httpx.ErrAlreadyExists},
	{Target: user.ErrInvalidTransition, Build: httpx.ErrStateConflict},
	{Target: user.ErrConcurrentChange, Build: httpx.ErrStateConflict},
	{Target: user.ErrHasRecords, Build: httpx.ErrStateConflict},
	{Target: user.ErrProtected, Build: httpx.ErrProtected},
	{Target: user.ErrSelfAction, Build: httpx.ErrForbidden},
	{Target: user.ErrRoleAboveActor, Build: httpx.ErrForbidden},
}

// Handler handles users API
type Handler struct {
	svc *user.Service
}

// NewHandler creates a new users handler
func NewHandler(svc *user.Service) *Handler {
	return &Handler{svc: svc}
}

func actor(c *gin.Context) user.Actor {
	return user.Actor{ID: middleware.CurrentUID(c), Role: middleware.CurrentRole(c)}
}

// List handles GET /api/v1/users
func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	req.Normalize()

	res, err := h.svc.List(c.Request.Context(), middleware.CurrentUID(c), user.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
		Role:     req.Role,
		Status:   req.Status,
		Division: req.Division,
	})
	if err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OKItems(c, res.Items, res.Total, req.Page, req.PageSize)
}

// Stats handles GET /api/v1/users/stats
func (h *Handler) Stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to load user stats", err))
		return
	}
	httpx.OK(c, st)
}

// Divisions handles GET /api/v1/users/divisions
func (h *Handler) Divisions(c *gin.Context) {
	divisions, err := h.svc.Divisions(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to load divisions", err))
		return
	}
	httpx.OK(c, gin.H{"items": divisions})
}

// Create handles POST /api/v1/users/create
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	res, err := h.svc.Create(c.Request.Context(), actor(c), user.CreateInput{
		Name:            req.Name,
		Sex:             req.Sex,
		Email:           req.Email,
		EmployeeID:      req.EmployeeID,
		Designation:     req.Designation,
		Division:        req.Division,
		Role:            req.Role,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Status:          req.Status,
	})
	if err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OK(c, res)
}

// Update handles POST /api/v1/users/update
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	u, err := h.svc.Update(c.Request.Context(), actor(c), user.UpdateInput{
		ID:              req.ID,
		Name:            req.Name,
		Sex:             req.Sex,
		Email:           req.Email,
		EmployeeID:      req.EmployeeID,
		Designation:     req.Designation,
		Division:        req.Division,
		Role:            req.Role,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OK(c, u)
}

// UpdateStatus handles POST /api/v1/users/update-status
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	u, err := h.svc.UpdateStatus(c.Request.Context(), actor(c), req.ID, model.UserStatus(req.Status))
	if err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OK(c, u)
}

// Delete handles POST /api/v1/users/delete
func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actor(c), req.ID); err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OKMsg(c, "deleted", gin.H{"id": req.ID})
}

// PasswordStrength handles POST /api/v1/users/password-strength
func (h *Handler) PasswordStrength(c *gin.Context) {
	var req PasswordStrengthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	httpx.OK(c, auth.PasswordStrength(req.Password))
}
