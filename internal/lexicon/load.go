package lexicon

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a user lexicon file.
//
//	categories:
//	  - name: pronoun_t
//	    class: T
//	    language: ru
//	    forms: [ты, тебя]
//	    lemmas: [ты]
type File struct {
	Categories []Category `yaml:"categories"`
}

// Parse decodes a YAML lexicon document. Unknown keys are rejected.
func Parse(data []byte) ([]Category, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return f.Categories, nil
}

// LoadFile reads and parses a lexicon file.
func LoadFile(path string) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon %s: %w", path, err)
	}
	cats, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cats, nil
}

// Build assembles a store from built-in languages followed by user files.
// File categories are validated together with the built-ins, so a user entry
// that contradicts a built-in T/V entry is a configuration error.
func Build(languages []string, files []string) (*Store, error) {
	var all []Category
	for _, lang := range languages {
		cats, err := Builtin(lang)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		all = append(all, cats...)
	}
	for _, path := range files {
		cats, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, cats...)
	}
	return New(all...)
}

// Marshal renders categories in the File layout.
func Marshal(categories []Category) ([]byte, error) {
	return yaml.Marshal(File{Categories: categories})
}
