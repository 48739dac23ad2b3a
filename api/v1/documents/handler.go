package documents

import (
	"errors"

	"peo_admin/api/v1/middleware"
	"peo_admin/internal/document"
	"peo_admin/internal/httpx"
	"peo_admin/internal/model"
	"peo_admin/internal/storage"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

// ListRequest represents list documents request
type ListRequest struct {
	httpx.PageQuery
	Search     string `form:"search"`
	Type       string `form:"type"`
	Status     string `form:"status"`
	District   string `form:"district"`
	ProjectRef string `form:"projectRef"`
}

// IDQuery carries a document id in the query string
type IDQuery struct {
	ID string `form:"id" binding:"required"`
}

// UpdateRequest represents update document request
type UpdateRequest struct {
	ID string `json:"id" binding:"required"`
	document.Input
}

// UpdateStatusRequest represents update document status request
type UpdateStatusRequest struct {
	ID      string `json:"id" binding:"required"`
	Status  string `json:"status" binding:"required"`
	Remarks string `json:"remarks"`
}

// DeleteRequest represents delete documents request
type DeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

var errorMap = httpx.ErrorMap{
	{Target: document.ErrNotFound, Build: httpx.ErrNotFound},
	{Target: document.ErrNoFile, Build: httpx.ErrNotFound},
	{Target: document.ErrCodeTaken, Build: httpx.ErrAlreadyExists},
	{Target: document.ErrCodeRequired, Build: httpx.ErrParamMissing},
	{Target: document.ErrTitleRequired, Build: httpx.ErrParamMissing},
	{Target: document.ErrInvalidType, Build: httpx.ErrParamIllegal},
	{Target: document.ErrInvalidStatus, Build: httpx.ErrParamIllegal},
	{Target: document.ErrInvalidDistrict, Build: httpx.ErrParamIllegal},
	{Target: document.ErrNegativeAmount, Build: httpx.ErrParamIllegal},
	{Target: document.ErrReleased, Build: httpx.ErrStateConflict},
	{Target: document.ErrInvalidTransition, Build: httpx.ErrStateConflict},
	{Target: document.ErrConcurrentChange, Build: httpx.ErrStateConflict},
	{Target: storage.ErrTooLarge, Build: httpx.ErrParamIllegal},
}

// Handler handles documents API
type Handler struct {
	svc      *document.Service
	maxBytes int64
}

// NewHandler creates a new documents handler
func NewHandler(svc *document.Service, maxBytes int64) *Handler {
	return &Handler{svc: svc, maxBytes: maxBytes}
}

// List handles GET /api/v1/documents
func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	req.Normalize()

	res, err := h.svc.List(c.Request.Context(), document.ListParams{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Search:     req.Search,
		Type:       req.Type,
		Status:     req.Status,
		District:   req.District,
		ProjectRef: req.ProjectRef,
	})
	if err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OKItems(c, toDTOs(res.Items), res.Total, req.Page, req.PageSize)
}

// Stats handles GET /api/v1/documents/stats
func (h *Handler) Stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to load document stats", err))
		return
	}
	httpx.OK(c, st)
}

// Detail handles GET /api/v1/documents/detail
func (h *Handler) Detail(c *gin.Context) {
	var req IDQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("id is required"))
		return
	}
	d, err := h.svc.Get(c.Request.Context(), req.ID)
	if err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OK(c, gin.H{"item": toDTO(d)})
}

// Create handles POST /api/v1/documents/create
func (h *Handler) Create(c *gin.Context) {
	var req document.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	d, err := h.svc.Create(c.Request.Context(), middleware.CurrentUID(c), req)
	if err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OK(c, gin.H{"item": toDTO(d)})
}

// Update handles POST /api/v1/documents/update
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	d, err := h.svc.Update(c.Request.Context(), req.ID, req.Input)
	if err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OK(c, gin.H{"item": toDTO(d)})
}

// UpdateStatus handles POST /api/v1/documents/update-status
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	d, err := h.svc.UpdateStatus(c.Request.Context(), middleware.CurrentUID(c), req.ID, model.DocumentStatus(req.Status), req.Remarks)
	if err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OK(c, gin.H{"item": toDTO(d)})
}

// Delete handles POST /api/v1/documents/delete
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

// Upload handles POST /api/v1/documents/upload (multipart: id, file)
func (h *Handler) Upload(c *gin.Context) {
	id := c.PostForm("id")
	if id == "" {
		httpx.FailErr(c, httpx.ErrParamMissing("id is required"))
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("file is required"))
		return
	}
	if fh.Size > h.maxBytes {
		httpx.FailErr(c, httpx.ErrParamIllegal("file exceeds upload limit of "+humanize.Bytes(uint64(h.maxBytes))))
		return
	}

	f, err := fh.Open()
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to read upload", err))
		return
	}
	defer f.Close()

	d, err := h.svc.Upload(c.Request.Context(), id, fh.Filename, f)
	if err != nil {
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	httpx.OK(c, gin.H{"item": toDTO(d)})
}

// Download handles GET /api/v1/documents/download
func (h *Handler) Download(c *gin.Context) {
	var req IDQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("id is required"))
		return
	}
	d, path, err := h.svc.File(c.Request.Context(), req.ID)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidPath) {
			httpx.FailErr(c, httpx.ErrInternalError("stored file path is invalid", err))
			return
		}
		httpx.FailErr(c, errorMap.Resolve(err))
		return
	}
	c.FileAttachment(path, model.StrVal(d.FileName))
}
