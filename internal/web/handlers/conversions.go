package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jusunglee/manchuscript/internal/db"
	"github.com/jusunglee/manchuscript/internal/metrics"
	"github.com/jusunglee/manchuscript/manchu"
	"github.com/samber/lo"
)

type ConversionHandler struct {
	repo db.Repository
	log  *slog.Logger
}

func NewConversionHandler(repo db.Repository, log *slog.Logger) *ConversionHandler {
	return &ConversionHandler{repo: repo, log: log}
}

type wordResponse struct {
	Romanized string `json:"romanized"`
	Script    string `json:"script"`
}

type conversionResponse struct {
	Romanized string         `json:"romanized"`
	Script    string         `json:"script"`
	Words     []wordResponse `json:"words"`
}

type recentResponse struct {
	Romanized string `json:"romanized"`
	Script    string `json:"script"`
	Source    string `json:"source"`
	CreatedAt string `json:"created_at"`
}

type createConversionRequest struct {
	Text string `json:"text"`
}

func (h *ConversionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createConversionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	script, err := manchu.ConvertText(req.Text)
	if err != nil {
		var uerr *manchu.UnrecognizedInputError
		if errors.As(err, &uerr) {
			metrics.ConversionsTotal.WithLabelValues("api", "rejected").Inc()
			writeError(w, http.StatusUnprocessableEntity,
				"unrecognized input "+strconv.Quote(uerr.Substring)+" in word "+strconv.Quote(uerr.Word))
			return
		}
		h.log.ErrorContext(r.Context(), "converting text", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	words := lo.Map(strings.Fields(req.Text), func(word string, _ int) wordResponse {
		// The whole text converted, so each word converts too.
		s, _ := manchu.ConvertWord(word)
		return wordResponse{Romanized: word, Script: s}
	})

	for _, word := range words {
		if _, err := h.repo.UpsertConversion(r.Context(), db.UpsertConversionParams{
			Romanized: strings.ToLower(word.Romanized),
			Script:    word.Script,
			Source:    "api",
		}); err != nil {
			h.log.ErrorContext(r.Context(), "recording conversion", "word", word.Romanized, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	metrics.ConversionsTotal.WithLabelValues("api", "ok").Inc()
	writeJSON(w, http.StatusOK, conversionResponse{
		Romanized: req.Text,
		Script:    script,
		Words:     words,
	})
}

func (h *ConversionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 25
	}

	conversions, err := h.repo.ListRecentConversions(r.Context(), int32(limit))
	if err != nil {
		h.log.ErrorContext(r.Context(), "listing conversions", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	data := lo.Map(conversions, func(c db.Conversion, _ int) recentResponse {
		return recentResponse{
			Romanized: c.Romanized,
			Script:    c.Script,
			Source:    c.Source,
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		}
	})
	if data == nil {
		data = []recentResponse{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
