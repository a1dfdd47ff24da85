package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/Alpha-Sight/propellantBE/common/id"
	"github.com/Alpha-Sight/propellantBE/internal/extract"
	"github.com/Alpha-Sight/propellantBE/internal/http/dto"
	"github.com/Alpha-Sight/propellantBE/internal/model"
	"github.com/Alpha-Sight/propellantBE/internal/service"
	"github.com/Alpha-Sight/propellantBE/internal/xion"
)

const (
	headerAnalysisID       = "X-Analysis-Id"
	headerCreditsRemaining = "X-Credits-Remaining"
)

type CVAnalysisHandler struct {
	svc            service.CVAnalysisService
	maxUploadBytes int64
}

func NewCVAnalysisHandler(svc service.CVAnalysisService, maxUploadBytes int64) *CVAnalysisHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &CVAnalysisHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

func (h *CVAnalysisHandler) Analyze(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CVAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	h.run(c, req.ToModel())
}

func (h *CVAnalysisHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	var form dto.CVUploadForm
	if err := c.ShouldBindWith(&form, binding.FormMultipart); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload exceeds " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes"})
			return
		}
		slog.WarnContext(ctx, "invalid upload form", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form: " + err.Error()})
		return
	}
	if form.Resume == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "resume file is required"})
		return
	}

	data, err := readUpload(form)
	if err != nil {
		slog.WarnContext(ctx, "failed to read upload", "error", err, "filename", form.Resume.Filename)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "resume file could not be read"})
		return
	}

	text, err := extract.ResumeText(data)
	if err != nil {
		slog.InfoContext(ctx, "resume extraction failed", "error", err, "filename", form.Resume.Filename, "size", form.Resume.Size)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	req, err := form.ToModel(text)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.run(c, req)
}

func (h *CVAnalysisHandler) run(c *gin.Context, req model.CVAnalysisRequest) {
	result, err := h.svc.Analyze(c.Request.Context(), req)
	if err != nil {
		status, msg := errorResponse(err)
		if status == http.StatusInternalServerError {
			slog.ErrorContext(c.Request.Context(), "cv analysis failed", "error", err)
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.Header(headerAnalysisID, id.String(result.AnalysisID))
	c.Header(headerCreditsRemaining, strconv.FormatInt(result.Receipt.CreditsRemaining, 10))
	c.Data(http.StatusOK, "application/json; charset=utf-8", result.Content)
}

// errorResponse maps service error kinds to a status code and client message.
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, xion.ErrQuery):
		return http.StatusUnauthorized, service.ErrAuth.Error()
	case errors.Is(err, service.ErrAuth):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrCreditUnavailable):
		return http.StatusBadGateway, "credit ledger unavailable"
	case errors.Is(err, service.ErrCredit):
		return http.StatusPaymentRequired, err.Error()
	case errors.Is(err, service.ErrNetwork):
		return http.StatusBadGateway, "llm provider unreachable"
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway, "llm provider call failed"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func readUpload(form dto.CVUploadForm) ([]byte, error) {
	f, err := form.Resume.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
