package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/edupath/readiness/internal/llm"
	"github.com/edupath/readiness/internal/model"
	"github.com/edupath/readiness/internal/render"
	"github.com/edupath/readiness/internal/report"
	"github.com/edupath/readiness/internal/score"
	"github.com/edupath/readiness/internal/store"
)

// Handler holds shared dependencies for HTTP handlers. store may be nil
// when archiving is disabled.
type Handler struct {
	store     *store.Store
	llm       *llm.Client
	renderer  render.Renderer
	page      render.PageConfig
	adminHash []byte
}

// New creates a new Handler. The admin password, when set, is hashed
// once here; the plaintext is not retained.
func New(s *store.Store, l *llm.Client, r render.Renderer, cfg model.ServerConfig) (*Handler, error) {
	h := &Handler{
		store:    s,
		llm:      l,
		renderer: r,
		page:     render.A4(),
	}
	if cfg.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		h.adminHash = hash
	}
	return h, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Route("/api", func(api chi.Router) {
		api.Post("/assess", h.handleAssess)
		api.Post("/report", h.handleReport)
		api.Group(func(admin chi.Router) {
			admin.Use(h.requireAdmin)
			admin.Get("/assessments", h.handleListAssessments)
			admin.Get("/assessments/{id}", h.handleGetAssessment)
		})
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAssess is the scoring path: validate and normalize the raw
// results locally, hand the scores to the LLM collaborator for the
// narrative, validate its reply, and return the assessment report.
func (h *Handler) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req model.AssessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, model.Errf(model.KindInvalidInput, "malformed request body: %v", err))
		return
	}
	if req.Name == "" {
		writeError(w, model.FieldErr(model.KindInvalidInput, "name", "subject name is required"))
		return
	}

	scores, err := score.NormalizeAll(req.Results)
	if err != nil {
		writeError(w, err)
		return
	}
	index, err := score.ComputeIndex(scores)
	if err != nil {
		writeError(w, err)
		return
	}
	tier, err := score.ClassifyTier(index)
	if err != nil {
		writeError(w, err)
		return
	}

	raw, err := h.llm.GenerateAssessment(r.Context(), req.Name, scores, index, tier)
	if err != nil {
		slog.Error("assessment generation failed", "name", req.Name, "error", err)
		writeError(w, err)
		return
	}

	obj, err := report.ExtractJSON(raw)
	if err != nil {
		slog.Error("collaborator reply rejected", "error", err, "raw", raw)
		writeError(w, err)
		return
	}
	rep, err := report.ValidateReply(obj)
	if err != nil {
		slog.Error("collaborator reply rejected", "error", err)
		writeError(w, err)
		return
	}

	// The collaborator's arithmetic is trusted once the reply passes
	// validation; divergence from the local index is only logged.
	if math.Abs(rep.OverallScore-index) > 1 {
		slog.Warn("collaborator index diverges from local index",
			"local", index, "collaborator", rep.OverallScore, "name", req.Name)
	}

	rep.Email = req.Email
	rep.Phone = req.Phone

	if h.store != nil {
		if id, err := h.store.SaveAssessment(rep); err != nil {
			slog.Error("archive write failed", "error", err)
		} else {
			slog.Info("assessment archived", "id", id, "name", rep.Name)
		}
	}

	writeJSON(w, http.StatusOK, rep)
}

// handleReport is the rendering path: accept an assessment report
// (canonical or lowerCamelCase key spellings), assemble the document,
// and stream the rasterized PDF.
func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	var obj map[string]any
	if err := json.NewDecoder(r.Body).Decode(&obj); err != nil {
		writeError(w, model.Errf(model.KindInvalidInput, "malformed request body: %v", err))
		return
	}
	rep := report.FromObject(obj)

	doc, err := report.Assemble(r.Context(), rep)
	if err != nil {
		writeError(w, err)
		return
	}
	html, err := report.RenderHTML(doc)
	if err != nil {
		slog.Error("report template failed", "error", err)
		writeError(w, model.Errf(model.KindRenderFailed, "report rendering failed"))
		return
	}

	pdf, err := h.renderer.RenderPDF(r.Context(), html, h.page)
	if err != nil {
		slog.Error("PDF rasterization failed", "name", rep.Name, "error", err)
		writeError(w, &model.Error{Kind: model.KindRenderFailed, Message: "PDF rendering failed", Err: err})
		return
	}

	filename := report.AttachmentFilename(rep.Name)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		slog.Error("write PDF response", "error", err)
	}
}

func (h *Handler) handleListAssessments(w http.ResponseWriter, _ *http.Request) {
	list, err := h.store.ListAssessments()
	if err != nil {
		slog.Error("list assessments", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, model.FieldErr(model.KindInvalidInput, "id", "invalid assessment id"))
		return
	}
	a, err := h.store.GetAssessment(id)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// errorBody is the structured error response shape.
type errorBody struct {
	Kind    model.Kind `json:"kind"`
	Field   string     `json:"field,omitempty"`
	Message string     `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	var me *model.Error
	if !errors.As(err, &me) {
		me = &model.Error{Kind: model.KindInvalidInput, Message: err.Error()}
	}
	writeJSON(w, statusFor(me.Kind), map[string]errorBody{
		"error": {Kind: me.Kind, Field: me.Field, Message: me.Message},
	})
}

func statusFor(kind model.Kind) int {
	switch kind {
	case model.KindInvalidInput, model.KindMissingCategory, model.KindUnknownCategory, model.KindOutOfRange:
		return http.StatusBadRequest
	case model.KindMissingRequiredField:
		return http.StatusUnprocessableEntity
	case model.KindNoJSONFound, model.KindMissingField, model.KindUpstreamUnavailable:
		return http.StatusBadGateway
	case model.KindRenderFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
