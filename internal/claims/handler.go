package claims

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"claims-backend/internal/extract"
	"claims-backend/internal/shared/server/respond"
)

const maxUploadSize = 20 << 20 // 20MB

// Handler wires the claims HTTP surface to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches claim routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/policy-coverage", h.policyCoverage)
	rg.POST("/claim-assessment", h.claimAssessment)
	rg.POST("/doc/:document", h.uploadDoc)
	rg.GET("/doc", h.listDocs)
}

func (h *Handler) policyCoverage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	user := strings.TrimSpace(c.PostForm("user"))
	if user == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user is required", nil)
		return
	}
	c.Set("userId", user)

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	answer, err := h.Svc.PolicyCoverage(c.Request.Context(), user, fileHeader.Filename, file, answersFromForm(c))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	respond.OK(c, gin.H{"success": true, "data": answer})
}

func (h *Handler) claimAssessment(c *gin.Context) {
	user := strings.TrimSpace(c.PostForm("user"))
	if user == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user is required", nil)
		return
	}
	c.Set("userId", user)

	var docs []string
	if raw := c.PostForm("docs"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &docs); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "docs must be a JSON list of category names", nil)
			return
		}
	}

	merged, err := h.Svc.AssessClaim(c.Request.Context(), user, docs, answersFromForm(c))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	respond.OK(c, gin.H{"success": true, "data": merged})
}

func (h *Handler) uploadDoc(c *gin.Context) {
	cat, err := extract.ParseCategory(c.Param("document"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	c.Set("category", string(cat))

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	// The original client posts the file under the category name; newer
	// clients use a plain "file" field.
	fileHeader, err := c.FormFile(string(cat))
	if err != nil {
		fileHeader, err = c.FormFile("file")
	}
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	user := strings.TrimSpace(c.PostForm("user"))
	if user == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user is required", nil)
		return
	}
	c.Set("userId", user)

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	entry, err := h.Svc.UploadDocument(c.Request.Context(), user, cat, fileHeader.Filename, file)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{
		"uploaded":   true,
		"category":   entry.Category,
		"fileName":   entry.FileName,
		"sizeBytes":  entry.SizeBytes,
		"uploadedAt": entry.UploadedAt,
	})
}

func (h *Handler) listDocs(c *gin.Context) {
	user := strings.TrimSpace(c.Query("user"))
	if user == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user is required", nil)
		return
	}
	c.Set("userId", user)

	entries, err := h.Svc.ListDocuments(c.Request.Context(), user)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respond.OK(c, gin.H{"documents": entries})
}

func (h *Handler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrMissingDocuments):
		respond.Error(c, http.StatusBadRequest, "missing_documents", err.Error(), nil)
	case errors.Is(err, extract.ErrTextNotCached):
		respond.Error(c, http.StatusBadRequest, "text_not_cached", err.Error(), nil)
	case errors.Is(err, extract.ErrSchemaViolation):
		respond.Error(c, http.StatusUnprocessableEntity, "extraction_schema_violation", err.Error(), nil)
	default:
		respond.Error(c, http.StatusBadGateway, "extraction_failed", err.Error(), nil)
	}
}

// answersFromForm collects the repeatable context fields, preserving the
// order values appeared on the form.
func answersFromForm(c *gin.Context) extract.Answers {
	_ = c.Request.ParseMultipartForm(maxUploadSize)
	values := func(key string) []string {
		if c.Request.MultipartForm != nil {
			if v, ok := c.Request.MultipartForm.Value[key]; ok {
				return v
			}
		}
		return c.PostFormArray(key)
	}
	return extract.Answers{
		User:           c.PostForm("user"),
		StartDate:      values("start-date"),
		Disease:        values("disease"),
		FirstDiagnosis: values("diagnose-date"),
		DrinkSmoke:     values("drink-smoke"),
	}
}
