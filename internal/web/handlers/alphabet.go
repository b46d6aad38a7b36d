package handlers

import (
	"net/http"
	"sort"

	"github.com/jusunglee/manchuscript/manchu"
	"github.com/samber/lo"
)

type AlphabetHandler struct{}

func NewAlphabetHandler() *AlphabetHandler {
	return &AlphabetHandler{}
}

type letterResponse struct {
	ID      string   `json:"id"`
	Isolate string   `json:"isolate"`
	Units   []string `json:"units"`
}

// List returns the letter registry with the romanizations that map to each
// letter. The response is static reference data, versioned with the binary.
func (h *AlphabetHandler) List(w http.ResponseWriter, r *http.Request) {
	a := manchu.Standard()

	unitsByLetter := lo.GroupBy(a.Units(), func(u manchu.UnitMapping) manchu.LetterID {
		return u.Letter
	})

	letters := lo.Map(a.Letters(), func(l manchu.Letter, _ int) letterResponse {
		units := lo.Map(unitsByLetter[l.ID], func(u manchu.UnitMapping, _ int) string {
			return u.Text
		})
		sort.Strings(units)
		return letterResponse{
			ID:      string(l.ID),
			Isolate: l.Form(manchu.Isolate),
			Units:   units,
		}
	})
	sort.Slice(letters, func(i, j int) bool { return letters[i].ID < letters[j].ID })

	writeJSON(w, http.StatusOK, map[string]any{"letters": letters})
}
