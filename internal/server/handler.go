package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ukaji3/xlpack-go/internal/catalog"
	"github.com/ukaji3/xlpack-go/internal/service"
	"github.com/ukaji3/xlpack-go/pkg/xlpack/document"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves the build API.
type Handler struct {
	builder *service.Builder
	version string
}

// NewHandler creates a handler around builder.
func NewHandler(builder *service.Builder, version string) *Handler {
	return &Handler{builder: builder, version: version}
}

// RegisterRoutes registers the API routes on router.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)
	router.POST("/build", h.Build)
	router.GET("/builds", h.ListBuilds)
}

// StatusResponse is the service status.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Publish bool   `json:"publish"`
}

// GetStatus returns the service status.
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status:  "ok",
		Version: h.version,
		Publish: h.builder.CanPublish(),
	})
}

// Build assembles the posted document. The package is returned as the
// response body, or published with its manifest returned when store=true.
// The body is decoded like a JSON document file, so unknown fields are
// rejected.
// POST /api/build?name=report&store=true
func (h *Handler) Build(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := document.Decode(body, document.FormatJSON)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	publish, _ := strconv.ParseBool(c.DefaultQuery("store", "false"))
	res, err := h.builder.Build(c.Request.Context(), service.Request{
		Name:     c.Query("name"),
		Document: doc,
		Publish:  publish,
	})
	if err != nil {
		kind := service.ErrorKind(err)
		c.JSON(statusFor(kind), gin.H{"error": err.Error(), "kind": kind})
		return
	}

	c.Header("X-Build-Id", res.BuildID)
	c.Header("X-Checksum", res.Manifest.Package.Checksum)
	if publish {
		c.JSON(http.StatusCreated, res.Manifest)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+res.Manifest.Package.File+`"`)
	c.Data(http.StatusOK, xlsxContentType, res.Package)
}

// ListBuilds returns recent catalog entries.
// GET /api/builds?limit=20
func (h *Handler) ListBuilds(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	recs, err := h.builder.RecentBuilds(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if recs == nil {
		recs = []catalog.BuildRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"items": recs, "total": len(recs)})
}

func statusFor(kind string) int {
	switch kind {
	case "invalid_document":
		return http.StatusBadRequest
	case "invalid_workbook":
		return http.StatusUnprocessableEntity
	case "no_store":
		return http.StatusConflict
	case "timeout":
		return http.StatusGatewayTimeout
	case "storage":
		return http.StatusBadGateway
	case "canceled":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
