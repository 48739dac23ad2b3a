package projects

import (
	"peo_admin/api/v1/middleware"
	"peo_admin/internal/httpx"
	"peo_admin/internal/project"

	"github.com/gin-gonic/gin"
)

// ListRequest represents list projects request
type ListRequest struct {
	httpx.PageQuery
	Search             string `form:"search"`
	Status             string `form:"status"`
	District           string `form:"district"`
	FundSource         string `form:"fundSource"`
	ImplementationMode string `form:"implementationMode"`
}

// DetailRequest represents project detail request
type DetailRequest struct {
	ID string `form:"id" binding:"required"`
}

// UpdateRequest represents update project request
type UpdateRequest struct {
	ID string `json:"id" binding:"required"`
	project.Input
}

// DeleteRequest represents delete projects request
type DeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

var errorMap = httpx.ErrorMap{
	{Target: project.ErrNotFound, Build: httpx.ErrNotFound},
	{Target: project.ErrCodeTaken, Build: httpx.ErrAlreadyExists},
	{Target: project.ErrCodeRequired, Build: httpx.ErrParamMissing},
	{Target: project.ErrTitleRequired, Build: httpx.ErrParamMissing},
	{Target: project.ErrInvalidEnum, Build: httpx.ErrParamIllegal},
	{Target: project.ErrNegativeNumber, Build: httpx.ErrParamIllegal},
}

// Handler handles projects API
type Handler struct {
	svc *project.Service
}

// NewHandler creates a new projects handler
func NewHandler(svc *project.Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /api/v1/projects
func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	req.Normalize()

	res, err := h.svc.List(c.Request.Context(), project.ListParams{
		Page:               req.Page,
		PageSize:           req.PageSize,
		Search:             req.Search,
		Status:             req.Status,
		District:           req.District,
		FundSource:         req.FundSource,
		ImplementationMode: req.ImplementationMode,
	})
	if err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OKItems(c, res.Items, res.Total, req.Page, req.PageSize)
}

// Stats handles GET /api/v1/projects/stats
func (h *Handler) Stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to load project stats", err))
		return
	}
	httpx.OK(c, st)
}

// Detail handles GET /api/v1/projects/detail
func (h *Handler) Detail(c *gin.Context) {
	var req DetailRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("id is required"))
		return
	}
	p, err := h.svc.Get(c.Request.Context(), req.ID)
	if err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OK(c, gin.H{"item": p})
}

// Create handles POST /api/v1/projects/create
func (h *Handler) Create(c *gin.Context) {
	var req project.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	p, err := h.svc.Create(c.Request.Context(), middleware.CurrentUID(c), req)
	if err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OK(c, gin.H{"item": p})
}

// Update handles POST /api/v1/projects/update
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	p, err := h.svc.Update(c.Request.Context(), req.ID, req.Input)
	if err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OK(c, gin.H{"item": p})
}

// Delete handles POST /api/v1/projects/delete
func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	n, err := h.svc.Delete(c.Request.Context(), req.IDs)
	if err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OK(c, gin.H{"deleted": n})
}
