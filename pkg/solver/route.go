package solver

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
)

// ErrNoRoute means the solver output contained no usable route: neither a
// bracketed tour nor a CSV id list. Callers must treat this as "solver
// produced no route", never as an empty-but-valid path.
var ErrNoRoute = errors.New("no route found in solver output")

// RouteSource identifies which parsing mode produced the vertex path.
type RouteSource int

const (
	// RouteSourceBracket is the primary mode: a bracketed, hyphen-delimited
	// tour like [1-22-21-...-1] somewhere in the solver's log output.
	RouteSourceBracket RouteSource = iota + 1
	// RouteSourceCSV is the fallback mode: the whole output is one vertex id
	// per line.
	RouteSourceCSV
)

func (s RouteSource) String() string {
	switch s {
	case RouteSourceBracket:
		return "bracket"
	case RouteSourceCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// Route is an ordered vertex-id tour decoded from solver output. Vertices
// repeat; an arc-routing tour revisits them.
type Route struct {
	Path   []int
	Source RouteSource
}

// DecodeRoute scans solver output for the last bracketed group whose content
// is a hyphen-delimited run of at least 2 integers, interleaved log lines
// ignored. When no bracketed tour exists anywhere, it falls back to CSV mode:
// the output parses as one integer per non-empty line. The two modes are
// reported distinctly via Route.Source.
func DecodeRoute(r io.Reader) (Route, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Route{}, err
	}

	if path, ok := lastBracketedTour(string(data)); ok {
		return Route{Path: path, Source: RouteSourceBracket}, nil
	}
	if path, ok := csvTour(string(data)); ok {
		return Route{Path: path, Source: RouteSourceCSV}, nil
	}
	return Route{}, ErrNoRoute
}

// lastBracketedTour scans line by line for bracketed groups and keeps the
// last one that fully validates: all tokens integers, hyphen-separated,
// at least two of them. Syntactically plausible but invalid groups (empty,
// single id, non-numeric tokens) are rejected, not trimmed.
func lastBracketedTour(text string) ([]int, bool) {
	var last []int

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		for {
			open := strings.IndexByte(line, '[')
			if open < 0 {
				break
			}
			end := strings.IndexByte(line[open:], ']')
			if end < 0 {
				break
			}
			if path, ok := parseHyphenRun(line[open+1 : open+end]); ok {
				last = path
			}
			line = line[open+end+1:]
		}
	}
	return last, last != nil
}

func parseHyphenRun(s string) ([]int, bool) {
	tokens := strings.Split(s, "-")
	if len(tokens) < 2 {
		return nil, false
	}
	path := make([]int, len(tokens))
	for i, tok := range tokens {
		id, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return nil, false
		}
		path[i] = id
	}
	return path, true
}

// csvTour accepts the output only when every non-empty line is a single
// integer (an optional trailing comma tolerated) and at least two ids are
// present. Log-style output never qualifies, so this mode cannot pick
// vertex ids out of arbitrary text.
func csvTour(text string) ([]int, bool) {
	var path []int
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		line = strings.TrimSuffix(line, ",")
		id, err := strconv.Atoi(line)
		if err != nil {
			return nil, false
		}
		path = append(path, id)
	}
	if len(path) < 2 {
		return nil, false
	}
	return path, true
}
