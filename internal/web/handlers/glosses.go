package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jusunglee/manchuscript/internal/gloss"
	"github.com/jusunglee/manchuscript/manchu"
)

type GlossHandler struct {
	glosser *gloss.Glosser // nil when no LLM is configured
	log     *slog.Logger
}

func NewGlossHandler(glosser *gloss.Glosser, log *slog.Logger) *GlossHandler {
	return &GlossHandler{glosser: glosser, log: log}
}

type glossRequest struct {
	Romanized string `json:"romanized"`
}

type glossResponse struct {
	Romanized string `json:"romanized"`
	Script    string `json:"script"`
	Gloss     string `json:"gloss"`
}

func (h *GlossHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.glosser == nil {
		writeError(w, http.StatusNotImplemented, "glossing is not configured on this server")
		return
	}

	var req glossRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	romanized := strings.ToLower(strings.TrimSpace(req.Romanized))
	if romanized == "" {
		writeError(w, http.StatusBadRequest, "romanized is required")
		return
	}

	// Only words in the transliteration alphabet are worth glossing.
	script, err := manchu.ConvertWord(romanized)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "not a romanized Manchu word")
		return
	}

	g, err := h.glosser.Gloss(r.Context(), romanized)
	if err != nil {
		h.log.ErrorContext(r.Context(), "glossing word", "romanized", romanized, "error", err)
		writeError(w, http.StatusBadGateway, "gloss generation failed")
		return
	}

	writeJSON(w, http.StatusOK, glossResponse{
		Romanized: romanized,
		Script:    script,
		Gloss:     g.Gloss,
	})
}
