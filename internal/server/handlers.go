package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/thomas-vilte/promptforge/internal/ai/proxy"
	"github.com/thomas-vilte/promptforge/internal/auth"
	"github.com/thomas-vilte/promptforge/internal/enhancement"
	domainErrors "github.com/thomas-vilte/promptforge/internal/errors"
	"github.com/thomas-vilte/promptforge/internal/logger"
	"github.com/thomas-vilte/promptforge/internal/models"
	"github.com/thomas-vilte/promptforge/internal/ports"
	"github.com/thomas-vilte/promptforge/internal/services/cost"
	"github.com/thomas-vilte/promptforge/internal/version"
	"github.com/thomas-vilte/promptforge/internal/workspace"
)

const (
	defaultTemperature = 0.7
	failureText        = "Failed to enhance prompt"
)

// handleEnhance mirrors the hosted /api/enhance function: the caller sends an
// already composed prompt and gets the whole completion back.
func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req proxy.EnhanceRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if req.Model == "" || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameters: model and prompt")
		return
	}

	if s.streamer == nil {
		writeError(w, http.StatusInternalServerError, domainErrors.ErrAPIKeyMissing.Message)
		return
	}

	temperature := defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	ctx := logger.With(r.Context(), "model", req.Model)

	var cacheKey string
	if s.cache != nil {
		cacheKey = s.cache.KeyFor(req.Model, req.Prompt, temperature)
		if raw, ok, err := s.cache.Get(cacheKey); err != nil {
			logger.Warn(ctx, "ignoring unreadable cache entry", "error", err)
		} else if ok {
			logger.Debug(ctx, "serving cached enhancement")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(raw)
			return
		}
	}

	content, usage, err := collect(ctx, s.streamer, models.CompletionRequest{
		Model:       req.Model,
		Prompt:      req.Prompt,
		Temperature: temperature,
	})
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = failureText
		}
		logger.Error(ctx, "proxied enhancement failed", err)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	resp := proxy.EnhanceResponse{Content: content}
	if usage != nil {
		resp.Usage = &proxy.Usage{
			PromptTokens:     usage.InputTokens,
			CompletionTokens: usage.OutputTokens,
			TotalTokens:      usage.TotalTokens,
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(cacheKey, resp); err != nil {
			logger.Warn(ctx, "failed to cache enhancement", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type pipelineRequest struct {
	Content            string `json:"content"`
	Model              string `json:"model,omitempty"`
	Technique          string `json:"technique,omitempty"`
	Format             string `json:"format,omitempty"`
	CustomInstructions string `json:"custom_instructions,omitempty"`
}

type pipelineResponse struct {
	Status enhancement.Status        `json:"status"`
	Result *models.EnhancementResult `json:"result,omitempty"`
	Error  string                    `json:"error,omitempty"`
}

// handleEnhancements runs the full pipeline for a signed-in client: resolve
// the selection, compose, stream, record.
func (s *Server) handleEnhancements(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var body pipelineRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if s.streamer == nil {
		writeError(w, http.StatusInternalServerError, domainErrors.ErrAPIKeyMissing.Message)
		return
	}

	ws := workspace.New(workspace.Defaults{
		ModelID:     s.cfg.Defaults.Model,
		TechniqueID: s.cfg.Defaults.Technique,
		FormatID:    s.cfg.Defaults.Format,
	})
	ws.SetInputPrompt(body.Content)
	if body.Model != "" {
		ws.SetModel(body.Model)
	}
	if body.Technique != "" {
		ws.SetTechnique(body.Technique)
	}
	if body.Format != "" {
		ws.SetFormat(body.Format)
	}

	req, err := ws.BuildRequest(s.catalog, body.CustomInstructions)
	if err != nil {
		writeAppError(w, err)
		return
	}

	opts := []enhancement.Option{enhancement.WithRecorder(s.recorder)}
	if s.spend != nil {
		opts = append(opts, enhancement.WithCostTracking(cost.NewCalculator(), s.spend))
	}
	ctrl := enhancement.NewController(s.streamer, auth.RequestIdentity{}, opts...)

	result, err := ctrl.Enhance(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}

	st := ctrl.Snapshot()
	writeJSON(w, http.StatusOK, pipelineResponse{Status: st.Status, Result: result})
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"models":     s.catalog.Models(),
		"techniques": s.catalog.Techniques(),
		"formats":    s.catalog.Formats(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); !ok {
		writeAppError(w, domainErrors.ErrNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, s.recorder.LoadHistory(r.Context()))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); !ok {
		writeAppError(w, domainErrors.ErrNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, s.recorder.LoadStats(r.Context()))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// collect drains a completion stream into one string.
func collect(ctx context.Context, streamer ports.CompletionStreamer, req models.CompletionRequest) (string, *models.TokenUsage, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := streamer.StreamCompletion(ctx, req)
	if err != nil {
		return "", nil, err
	}

	var (
		b     strings.Builder
		usage *models.TokenUsage
	)
	for ev := range events {
		if ev.Err != nil {
			return "", nil, ev.Err
		}
		if ev.Usage != nil {
			usage = ev.Usage
		}
		b.WriteString(ev.Delta)
	}
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	return b.String(), usage, nil
}

// decodeBody reads a JSON body; an empty body decodes as {}.
func decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}

func writeCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeAppError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()

	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		msg = appErr.UserMessage()
		switch appErr.Type {
		case domainErrors.TypeAuth:
			status = http.StatusUnauthorized
		case domainErrors.TypeConfiguration, domainErrors.TypeValidation:
			status = http.StatusBadRequest
		case domainErrors.TypeProvider:
			status = http.StatusBadGateway
		}
	}

	writeError(w, status, msg)
}
