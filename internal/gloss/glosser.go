package gloss

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jusunglee/manchuscript/internal/db"
	"github.com/jusunglee/manchuscript/internal/llm"
	"github.com/jusunglee/manchuscript/internal/metrics"
)

// Glosser annotates romanized Manchu words with short English glosses.
// Results are cached in the repository keyed by the romanized form, so each
// word is sent to the LLM at most once.
type Glosser struct {
	llm      llm.Client
	repo     db.Repository
	provider string
	model    string
}

type Gloss struct {
	Romanized string `json:"romanized"`
	Gloss     string `json:"gloss"`
}

func NewGlosser(client llm.Client, repo db.Repository, provider, model string) *Glosser {
	return &Glosser{llm: client, repo: repo, provider: provider, model: model}
}

const systemPrompt = `You are annotating romanized Manchu words (Möllendorff transliteration) with short English glosses.

For the given word, respond ONLY with a JSON object, no other text. Example:
{"romanized": "morin", "gloss": "horse"}

If the word is not attested Manchu, use an empty gloss.`

// Gloss returns an English gloss for one romanized word, consulting the
// cache first.
func (g *Glosser) Gloss(ctx context.Context, romanized string) (Gloss, error) {
	if cached, err := g.repo.GetGloss(ctx, romanized); err == nil {
		metrics.GlossRequests.WithLabelValues("cached").Inc()
		return Gloss{Romanized: cached.Romanized, Gloss: cached.Gloss}, nil
	} else if !db.IsNoRows(err) {
		return Gloss{}, fmt.Errorf("reading gloss cache: %w", err)
	}

	start := time.Now()
	text, err := g.llm.Complete(ctx, systemPrompt, "Gloss this word: "+romanized)
	metrics.LLMGlossDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GlossRequests.WithLabelValues("failed").Inc()
		return Gloss{}, err
	}

	var parsed Gloss
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		metrics.GlossRequests.WithLabelValues("failed").Inc()
		return Gloss{}, fmt.Errorf("failed to parse gloss response: %w (response: %s)", err, text)
	}
	parsed.Romanized = romanized

	if _, err := g.repo.UpsertGloss(ctx, db.UpsertGlossParams{
		Romanized: romanized,
		Gloss:     parsed.Gloss,
		Provider:  g.provider,
		Model:     g.model,
	}); err != nil {
		return Gloss{}, fmt.Errorf("caching gloss: %w", err)
	}

	metrics.GlossRequests.WithLabelValues("generated").Inc()
	return parsed, nil
}
