package corpus

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DeixisSeparator joins the sentences of one context group in the deixis
// consistency test set files.
const DeixisSeparator = "_eos"

// DeixisSplits are the test set splits, in output order.
var DeixisSplits = []string{"deixis_test", "deixis_dev"}

// ReadDeixisSplit reads <dir>/<split>.src (English) and <split>.dst (Russian),
// splits every line into its context sentences and drops repeated Russian
// sentences.
func ReadDeixisSplit(dir, split string) ([]Pair, error) {
	srcPath := filepath.Join(dir, split+".src")
	dstPath := filepath.Join(dir, split+".dst")

	en, err := ReadLinesFile(srcPath)
	if err != nil {
		return nil, err
	}
	ru, err := ReadLinesFile(dstPath)
	if err != nil {
		return nil, err
	}
	if len(en) != len(ru) {
		return nil, fmt.Errorf("%s has %d lines but %s has %d", srcPath, len(en), dstPath, len(ru))
	}

	seen := make(map[string]bool)
	var pairs []Pair
	for i := range en {
		enParts := strings.Split(strings.TrimSpace(en[i]), DeixisSeparator)
		ruParts := strings.Split(strings.TrimSpace(ru[i]), DeixisSeparator)
		if len(enParts) != len(ruParts) {
			return nil, fmt.Errorf("%s line %d: %d English sentences but %d Russian", split, i+1, len(enParts), len(ruParts))
		}

		for j := range ruParts {
			r := strings.TrimSpace(ruParts[j])
			if seen[r] {
				continue
			}
			seen[r] = true
			pairs = append(pairs, Pair{Source: strings.TrimSpace(enParts[j]), Target: r})
		}
	}

	return pairs, nil
}

// ReformatDeixis merges all splits into one parallel list. Pairs whose Russian
// side is a bare "." are dropped: translation models tend to emit an empty
// line for them, which breaks line alignment during evaluation.
func ReformatDeixis(dir string) ([]Pair, error) {
	var all []Pair
	for _, split := range DeixisSplits {
		pairs, err := ReadDeixisSplit(dir, split)
		if err != nil {
			return nil, err
		}
		all = append(all, pairs...)
	}

	out := all[:0]
	for _, p := range all {
		if p.Target == "." {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
