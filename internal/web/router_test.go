package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jusunglee/manchuscript/internal/db"
	"github.com/jusunglee/manchuscript/internal/db/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (http.Handler, db.Repository) {
	t.Helper()
	repo, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(repo, log, nil).Handler(), repo
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateConversion(t *testing.T) {
	handler, repo := newTestHandler(t)

	rec := postJSON(t, handler, "/api/v1/conversions", `{"text": "bejing be baha"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Romanized string `json:"romanized"`
		Script    string `json:"script"`
		Words     []struct {
			Romanized string `json:"romanized"`
			Script    string `json:"script"`
		} `json:"words"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ᠪᡝᠵᡳᠩ ᠪᡝ ᠪᠠᡥᠠ", resp.Script)
	assert.Len(t, resp.Words, 3)
	assert.Equal(t, "ᠪᡝ", resp.Words[1].Script)

	// Each word was recorded
	conv, err := repo.GetConversion(context.Background(), "bejing")
	require.NoError(t, err)
	assert.Equal(t, "ᠪᡝᠵᡳᠩ", conv.Script)
	assert.Equal(t, "api", conv.Source)
}

func TestCreateConversionRejectsBadInput(t *testing.T) {
	handler, repo := newTestHandler(t)

	rec := postJSON(t, handler, "/api/v1/conversions", `{"text": "manju b3"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "unrecognized input")

	// Fail-fast: nothing recorded, not even the valid word
	_, err := repo.GetConversion(context.Background(), "manju")
	assert.True(t, db.IsNoRows(err))
}

func TestCreateConversionValidation(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postJSON(t, handler, "/api/v1/conversions", `{"text": "   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, handler, "/api/v1/conversions", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecentConversions(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postJSON(t, handler, "/api/v1/conversions", `{"text": "manju gisun"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversions/recent?limit=10", nil)
	getRec := httptest.NewRecorder()
	handler.ServeHTTP(getRec, req)
	require.Equal(t, http.StatusOK, getRec.Code)

	var resp struct {
		Data []struct {
			Romanized string `json:"romanized"`
			Script    string `json:"script"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
}

func TestAlphabet(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alphabet", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Letters []struct {
			ID      string   `json:"id"`
			Isolate string   `json:"isolate"`
			Units   []string `json:"units"`
		} `json:"letters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Letters)

	for _, l := range resp.Letters {
		assert.NotEmpty(t, l.Isolate, "letter %s has no isolate form", l.ID)
		assert.NotEmpty(t, l.Units, "letter %s has no romanization", l.ID)
	}
}

func TestGlossNotConfigured(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postJSON(t, handler, "/api/v1/glosses", `{"romanized": "morin"}`)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
