package wordset

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/spellbee/internal/word"
)

// TournamentID names the set combining every word of a catalog.
const TournamentID = "tournament"

// ErrUnknownSet is returned when a set id is not in the catalog.
var ErrUnknownSet = errors.New("unknown word set")

// Set is a named list of words with optional translations.
type Set struct {
	ID           string            `yaml:"id"`
	Title        string            `yaml:"title"`
	Description  string            `yaml:"description"`
	Words        []string          `yaml:"words"`
	Translations map[string]string `yaml:"translations"`
}

// Translation returns the translation of w, if any.
func (s Set) Translation(w string) string {
	if len(s.Translations) == 0 {
		return ""
	}
	if t, ok := s.Translations[word.Normalize(w)]; ok {
		return t
	}
	return s.Translations[strings.ToLower(w)]
}

// Catalog is an ordered collection of sets.
type Catalog struct {
	Sets []Set `yaml:"sets"`
}

// LoadCatalog decodes a YAML catalog file.
func LoadCatalog(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, err
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(raw []byte) (Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return Catalog{}, fmt.Errorf("failed to decode catalog: %w", err)
	}
	seen := map[string]struct{}{}
	for i := range cat.Sets {
		set := &cat.Sets[i]
		set.ID = strings.TrimSpace(set.ID)
		if set.ID == "" {
			return Catalog{}, fmt.Errorf("set %d has no id", i+1)
		}
		if set.ID == TournamentID {
			return Catalog{}, fmt.Errorf("set id %q is reserved", TournamentID)
		}
		if _, ok := seen[set.ID]; ok {
			return Catalog{}, fmt.Errorf("duplicate set id %q", set.ID)
		}
		seen[set.ID] = struct{}{}
		if set.Title == "" {
			set.Title = set.ID
		}
		set.Words = Clean(set.Words)
		if len(set.Words) == 0 {
			return Catalog{}, fmt.Errorf("set %q has no words", set.ID)
		}
		set.Translations = normalizeKeys(set.Translations)
	}
	if len(cat.Sets) == 0 {
		return Catalog{}, fmt.Errorf("catalog has no sets")
	}
	return cat, nil
}

// IDs returns set ids in catalog order.
func (c Catalog) IDs() []string {
	ids := make([]string, len(c.Sets))
	for i, s := range c.Sets {
		ids[i] = s.ID
	}
	return ids
}

// Find returns the set with the given id. TournamentID resolves to the
// union of all sets.
func (c Catalog) Find(id string) (Set, error) {
	if id == TournamentID {
		return c.Tournament(), nil
	}
	for _, s := range c.Sets {
		if s.ID == id {
			return s, nil
		}
	}
	return Set{}, fmt.Errorf("%w: %q", ErrUnknownSet, id)
}

// Latest returns the set with the greatest id, which for date-keyed
// catalogs is the newest week.
func (c Catalog) Latest() (Set, bool) {
	if len(c.Sets) == 0 {
		return Set{}, false
	}
	ids := c.IDs()
	sort.Strings(ids)
	s, err := c.Find(ids[len(ids)-1])
	return s, err == nil
}

// Tournament merges every set into one, keeping the first spelling and
// translation of each word.
func (c Catalog) Tournament() Set {
	var words []string
	translations := map[string]string{}
	for _, s := range c.Sets {
		words = append(words, s.Words...)
		for k, v := range s.Translations {
			if _, ok := translations[k]; !ok {
				translations[k] = v
			}
		}
	}
	return Set{
		ID:           TournamentID,
		Title:        "Tournament",
		Description:  "Words from every set.",
		Words:        Clean(words),
		Translations: translations,
	}
}

func normalizeKeys(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[word.Normalize(k)] = v
	}
	return out
}
