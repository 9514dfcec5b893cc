// Package lexicon holds the word lists the detectors consult: second-person
// pronouns, possessives, imperative forms and address terms, each filed under
// a politeness class.
package lexicon

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/textnorm"
)

// ErrConfiguration is the sentinel for invalid lexicon definitions.
var ErrConfiguration = errors.New("lexicon configuration error")

// ConfigError describes a load-time violation. It unwraps to ErrConfiguration.
type ConfigError struct {
	Category string
	Entry    string
	Reason   string
}

func (e *ConfigError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("lexicon: category %q entry %q: %s", e.Category, e.Entry, e.Reason)
	}
	return fmt.Sprintf("lexicon: category %q: %s", e.Category, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// Category is a named word list with a politeness class.
type Category struct {
	Name     string      `yaml:"name"`
	Class    model.Class `yaml:"class"`
	Language string      `yaml:"language"`
	Forms    []string    `yaml:"forms"`            // Surface forms
	Lemmas   []string    `yaml:"lemmas,omitempty"` // Lemmas, matched against parser output
}

// Match is a category hit for a looked-up word.
type Match struct {
	Category string
	Class    model.Class
	Language string
}

// Store is an immutable, concurrency-safe lexicon.
type Store struct {
	categories []Category
	forms      map[string][]Match
	lemmas     map[string][]Match
}

// New validates the categories and builds a Store. Any violation is returned
// as a *ConfigError; no partial store is returned.
func New(categories ...Category) (*Store, error) {
	s := &Store{
		forms:  make(map[string][]Match),
		lemmas: make(map[string][]Match),
	}

	// key -> category that claimed it, per T/V class, across forms and lemmas
	claimed := map[model.Class]map[string]string{
		model.ClassT: {},
		model.ClassV: {},
	}

	for _, c := range categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, &ConfigError{Category: c.Name, Reason: "empty category name"}
		}
		switch c.Class {
		case model.ClassT, model.ClassV, model.ClassAddress:
		default:
			return nil, &ConfigError{Category: c.Name, Reason: fmt.Sprintf("unknown class %q (expected T, V or address)", c.Class)}
		}
		if len(c.Forms) == 0 && len(c.Lemmas) == 0 {
			return nil, &ConfigError{Category: c.Name, Reason: "no forms or lemmas"}
		}

		m := Match{Category: c.Name, Class: c.Class, Language: c.Language}

		add := func(index map[string][]Match, raw string) error {
			key, err := entryKey(c.Name, raw)
			if err != nil {
				return err
			}
			if other, ok := claimed[opposite(c.Class)][key]; ok {
				return &ConfigError{
					Category: c.Name,
					Entry:    raw,
					Reason:   fmt.Sprintf("also listed in %s-class category %q", opposite(c.Class), other),
				}
			}
			if set, ok := claimed[c.Class]; ok {
				if _, seen := set[key]; !seen {
					set[key] = c.Name
				}
			}
			for _, existing := range index[key] {
				if existing.Category == m.Category {
					return nil
				}
			}
			index[key] = append(index[key], m)
			return nil
		}

		for _, f := range c.Forms {
			if err := add(s.forms, f); err != nil {
				return nil, err
			}
		}
		for _, l := range c.Lemmas {
			if err := add(s.lemmas, l); err != nil {
				return nil, err
			}
		}

		s.categories = append(s.categories, c)
	}

	return s, nil
}

func entryKey(category, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", &ConfigError{Category: category, Entry: raw, Reason: "empty entry"}
	}
	if strings.IndexFunc(strings.TrimSpace(raw), unicode.IsSpace) >= 0 {
		return "", &ConfigError{Category: category, Entry: raw, Reason: "entries must be single words"}
	}
	return textnorm.Normalize(raw), nil
}

// opposite returns the conflicting class for T and V; address has none.
func opposite(c model.Class) model.Class {
	switch c {
	case model.ClassT:
		return model.ClassV
	case model.ClassV:
		return model.ClassT
	}
	return ""
}

// Lookup returns the categories a surface form belongs to.
func (s *Store) Lookup(form string) []Match {
	return s.forms[textnorm.Normalize(form)]
}

// LookupLemma returns the categories a lemma belongs to.
func (s *Store) LookupLemma(lemma string) []Match {
	return s.lemmas[textnorm.Normalize(lemma)]
}

// LemmaClass returns the T/V class of a lemma, or "" when the lemma is not a
// T or V entry.
func (s *Store) LemmaClass(lemma string) model.Class {
	for _, m := range s.LookupLemma(lemma) {
		if m.Class == model.ClassT || m.Class == model.ClassV {
			return m.Class
		}
	}
	return ""
}

// Categories returns a copy of the categories in load order.
func (s *Store) Categories() []Category {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Languages returns the sorted set of languages covered by the store.
func (s *Store) Languages() []string {
	seen := map[string]bool{}
	for _, c := range s.categories {
		if c.Language != "" {
			seen[c.Language] = true
		}
	}
	langs := make([]string, 0, len(seen))
	for l := range seen {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// Size returns the number of distinct form and lemma keys.
func (s *Store) Size() (forms, lemmas int) {
	return len(s.forms), len(s.lemmas)
}
