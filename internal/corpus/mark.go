package corpus

import (
	"fmt"

	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/tag"
)

// MarkedSuffix is appended to the source file name by MarkFile.
const MarkedSuffix = ".tv"

// Mark prepends the side-constraint token of each label to the matching
// source line. Untagged labels leave the line unchanged.
func Mark(sources []string, labels []model.Label, tags *tag.Set) ([]string, error) {
	if len(sources) != len(labels) {
		return nil, fmt.Errorf("%d source lines but %d labels", len(sources), len(labels))
	}

	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = tags.Prepend(labels[i], s)
	}
	return out, nil
}

// MarkFile writes the marked source lines next to the source file as
// <sourcePath>.tv and returns the path written.
func MarkFile(sourcePath string, sources []string, labels []model.Label, tags *tag.Set) (string, error) {
	marked, err := Mark(sources, labels, tags)
	if err != nil {
		return "", err
	}

	out := sourcePath + MarkedSuffix
	if err := WriteLinesFile(out, marked); err != nil {
		return "", err
	}
	return out, nil
}

// PrependAll prepends a fixed token to every line, as used to force one label
// on a whole test set.
func PrependAll(lines []string, token string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = token + " " + l
	}
	return out
}

// PrependFile applies PrependAll from inPath to outPath.
func PrependFile(inPath, outPath, token string) (int, error) {
	lines, err := ReadLinesFile(inPath)
	if err != nil {
		return 0, err
	}
	if err := WriteLinesFile(outPath, PrependAll(lines, token)); err != nil {
		return 0, err
	}
	return len(lines), nil
}
