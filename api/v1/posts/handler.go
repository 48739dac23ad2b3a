package posts

import (
	"peo_admin/api/v1/middleware"
	"peo_admin/internal/httpx"
	"peo_admin/internal/post"

	"github.com/gin-gonic/gin"
)

// ListRequest represents list posts request
type ListRequest struct {
	httpx.PageQuery
	Search string `form:"search"`
}

// CreateRequest represents create post request
type CreateRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateRequest represents update post request
type UpdateRequest struct {
	ID   int    `json:"id" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// DeleteRequest represents delete posts request
type DeleteRequest struct {
	IDs []int `json:"ids" binding:"required,min=1"`
}

var errorMap = httpx.ErrorMap{
	{Target: post.ErrNotFound, Build: httpx.ErrNotFound},
	{Target: post.ErrNameRequired, Build: httpx.ErrParamMissing},
}

// Handler handles posts API
type Handler struct {
	svc *post.Service
}

// NewHandler creates a new posts handler
func NewHandler(svc *post.Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /api/v1/posts
func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	req.Normalize()

	res, err := h.svc.List(c.Request.Context(), post.ListParams{Page: req.Page, PageSize: req.PageSize, Search: req.Search})
	if err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OKItems(c, res.Items, res.Total, req.Page, req.PageSize)
}

// Create handles POST /api/v1/posts/create
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("name is required"))
		return
	}
	p, err := h.svc.Create(c.Request.Context(), middleware.CurrentUID(c), req.Name)
	if err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OK(c, gin.H{"item": p})
}

// Update handles POST /api/v1/posts/update
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	p, err := h.svc.Update(c.Request.Context(), req.ID, req.Name)
	if err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OK(c, gin.H{"item": p})
}

// Delete handles POST /api/v1/posts/delete
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
