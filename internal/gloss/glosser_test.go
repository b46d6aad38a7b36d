package gloss

import (
	"context"
	"testing"

	"github.com/jusunglee/manchuscript/internal/db"
	"github.com/jusunglee/manchuscript/internal/db/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Complete(ctx context.Context, system, prompt string) (string, error) {
	ret := m.Called(ctx, system, prompt)
	return ret.String(0), ret.Error(1)
}

func newTestRepo(t *testing.T) db.Repository {
	t.Helper()
	repo, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestGlossCallsLLMOnce(t *testing.T) {
	repo := newTestRepo(t)
	llmMock := &MockLLM{}
	llmMock.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"romanized": "morin", "gloss": "horse"}`, nil).Once()

	g := NewGlosser(llmMock, repo, "test", "test-model")

	first, err := g.Gloss(context.Background(), "morin")
	require.NoError(t, err)
	assert.Equal(t, "horse", first.Gloss)

	// Second lookup is served from the cache; the mock would fail on a
	// second Complete call.
	second, err := g.Gloss(context.Background(), "morin")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	llmMock.AssertExpectations(t)
}

func TestGlossRejectsBadResponse(t *testing.T) {
	repo := newTestRepo(t)
	llmMock := &MockLLM{}
	llmMock.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("not json", nil)

	g := NewGlosser(llmMock, repo, "test", "test-model")

	_, err := g.Gloss(context.Background(), "morin")
	require.Error(t, err)

	// A failed parse must not poison the cache.
	_, err = repo.GetGloss(context.Background(), "morin")
	assert.True(t, db.IsNoRows(err))
}
