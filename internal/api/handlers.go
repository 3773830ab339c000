// internal/api/handlers.go
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Corphon/ScriptBreakdown/internal/llm"
	"github.com/Corphon/ScriptBreakdown/internal/prompt"
	"github.com/Corphon/ScriptBreakdown/internal/services"
)

const sessionCookie = "script_breakdown_session"

// MaxSubmitBytes caps the JSON body of a submission
const MaxSubmitBytes = 2 << 20

// Handler serves the page and the JSON API
type Handler struct {
	Sessions   *services.SessionService    // per-browser controllers
	Generation *services.GenerationService // provider status
	Export     *services.ExportService     // copy and download
	Response   *ResponseHelper

	logger *zap.Logger
}

// SubmitRequest is the body of POST /api/breakdown
type SubmitRequest struct {
	Script string `json:"script"`
}

// NewHandler builds a Handler; a nil logger discards output
func NewHandler(sessions *services.SessionService, generation *services.GenerationService, export *services.ExportService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Sessions:   sessions,
		Generation: generation,
		Export:     export,
		Response:   NewResponseHelper(),
		logger:     logger.Named("api"),
	}
}

// session returns the caller's controller, issuing a cookie for new sessions
func (h *Handler) session(c *gin.Context) *services.Controller {
	current, _ := c.Cookie(sessionCookie)
	id, controller := h.Sessions.GetOrCreate(current)
	if id != current {
		http.SetCookie(c.Writer, newSessionCookie(id))
	}
	return controller
}

func newSessionCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// IndexPage renders the page for the caller's session
func (h *Handler) IndexPage(c *gin.Context) {
	state := h.session(c).State()
	c.HTML(http.StatusOK, "index.html", gin.H{
		"State":       state,
		"View":        BuildView(state),
		"Placeholder": ScriptPlaceholder,
		"Labels": gin.H{
			"Submit":      SubmitLabel,
			"SubmitBusy":  SubmitBusyLabel,
			"Copy":        CopyLabel,
			"Copied":      CopiedLabel,
			"Download":    DownloadLabel,
			"Downloaded":  DownloadedLabel,
			"ErrorPrefix": ErrorPrefixLabel,
			"Output":      OutputHeading,
			"Welcome":     WelcomeHeading,
			"WelcomeBody": WelcomeBody,
		},
		"AckRevertMillis": AckRevertMillis,
		"FileName":        services.ExportFileName,
	})
}

// SubmitBreakdown replaces the script and runs one generation. It blocks
// until the generation settles and answers with the resulting state.
func (h *Handler) SubmitBreakdown(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxSubmitBytes)

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Response.Error(c, http.StatusRequestEntityTooLarge, &APIError{
				Code:    ErrorBodyTooLarge,
				Message: "The script is too long to submit.",
			}, nil)
			return
		}
		h.Response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	controller := h.session(c)
	controller.SetScript(req.Script)

	err := controller.Submit(c.Request.Context())
	payload := NewStatePayload(controller.State())
	if err != nil {
		h.Response.AppError(c, err, payload)
		return
	}
	h.Response.Success(c, payload)
}

// GetState returns the session's current state
func (h *Handler) GetState(c *gin.Context) {
	h.Response.Success(c, NewStatePayload(h.session(c).State()))
}

// CancelBreakdown abandons the session's in-flight generation
func (h *Handler) CancelBreakdown(c *gin.Context) {
	controller := h.session(c)
	canceled := controller.Cancel()
	payload := NewStatePayload(controller.State())
	h.Response.Success(c, gin.H{
		"canceled": canceled,
		"state":    payload.State,
		"view":     payload.View,
	})
}

// ResetSession clears the session back to its initial state
func (h *Handler) ResetSession(c *gin.Context) {
	controller := h.session(c)
	controller.Reset()
	h.Response.Success(c, NewStatePayload(controller.State()))
}

// CopyBreakdown returns the clipboard text for the current breakdown
func (h *Handler) CopyBreakdown(c *gin.Context) {
	state := h.session(c).State()
	if state.Breakdown == nil {
		h.Response.NotFound(c, ErrorNoBreakdown, "No breakdown has been generated yet.")
		return
	}

	out, err := services.RenderBreakdown(state.Breakdown)
	if err != nil {
		h.logger.Error("render failed", zap.Error(err))
		h.Response.InternalError(c, ErrorExportFailed, "Failed to render the breakdown.")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", out)
}

// DownloadBreakdown serves the current breakdown as scene_breakdown.json
func (h *Handler) DownloadBreakdown(c *gin.Context) {
	state := h.session(c).State()
	if state.Breakdown == nil {
		h.Response.NotFound(c, ErrorNoBreakdown, "No breakdown has been generated yet.")
		return
	}

	result, err := h.Export.Export(state.Breakdown)
	if err != nil {
		h.logger.Error("export failed", zap.Error(err))
		h.Response.InternalError(c, ErrorExportFailed, "Failed to export the breakdown.")
		return
	}
	h.Response.DownloadResponse(c, result)
}

// GetSchema serves the response schema sent with every request
func (h *Handler) GetSchema(c *gin.Context) {
	c.JSON(http.StatusOK, prompt.JSONSchema())
}

// ProviderInfo describes one registered provider
type ProviderInfo struct {
	Name   string   `json:"name"`
	Models []string `json:"models"`
}

// GetStatus reports the provider in use, every registered provider and the
// live session count
func (h *Handler) GetStatus(c *gin.Context) {
	names := llm.ListProviders()
	available := make([]ProviderInfo, 0, len(names))
	for _, name := range names {
		available = append(available, ProviderInfo{
			Name:   name,
			Models: llm.GetSupportedModelsForProvider(name),
		})
	}

	h.Response.Success(c, gin.H{
		"generation":      h.Generation.Status(),
		"providers":       available,
		"active_sessions": h.Sessions.Count(),
	})
}

// NotFound answers unknown routes with the error envelope
func (h *Handler) NotFound(c *gin.Context) {
	h.Response.NotFound(c, ErrorNotFound, "No route for "+c.Request.Method+" "+c.Request.URL.Path)
}

// Health answers liveness probes
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now(),
	})
}
