// Package corpus reads and writes the plain-text and JSON Lines files of a
// parallel corpus: aligned source/target lines, labeled records, tagged
// source files, the balanced subcorpus and the deixis test set.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLine bounds a single corpus line.
const maxLine = 4 * 1024 * 1024

// Pair is one aligned source/target sentence pair. Target is empty for
// monolingual input.
type Pair struct {
	Source string
	Target string
}

// ReadLines reads every line of r, keeping empty lines so that line numbers
// stay aligned with parallel files. Trailing "\r" is removed.
func ReadLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// ReadLinesFile reads every line of a file.
func ReadLinesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// WriteLines writes one line per element, each terminated by "\n".
func WriteLines(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := bw.WriteString(l); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteLinesFile creates path and writes the lines to it.
func WriteLinesFile(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteLines(f, lines); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// ReadPairs reads aligned source and target files. targetPath may be empty
// for monolingual input. Files with different line counts are rejected.
func ReadPairs(sourcePath, targetPath string) ([]Pair, error) {
	sources, err := ReadLinesFile(sourcePath)
	if err != nil {
		return nil, err
	}

	var targets []string
	if targetPath != "" {
		targets, err = ReadLinesFile(targetPath)
		if err != nil {
			return nil, err
		}
		if len(targets) != len(sources) {
			return nil, fmt.Errorf("%s has %d lines but %s has %d", sourcePath, len(sources), targetPath, len(targets))
		}
	}

	pairs := make([]Pair, len(sources))
	for i, s := range sources {
		pairs[i].Source = s
		if targets != nil {
			pairs[i].Target = targets[i]
		}
	}
	return pairs, nil
}

// Split returns the source and target columns of pairs.
func Split(pairs []Pair) (sources, targets []string) {
	sources = make([]string, len(pairs))
	targets = make([]string, len(pairs))
	for i, p := range pairs {
		sources[i] = p.Source
		targets[i] = p.Target
	}
	return sources, targets
}
