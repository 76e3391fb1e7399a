// Package solver encodes arc-routing problem instances for the external
// solver, parses them back, and decodes the solver's route output.
package solver

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"arc_router/pkg/geo"
	"arc_router/pkg/graph"
)

// Literal block markers required by the external solver's parser.
const (
	linksMarker       = "LINKS"
	endLinksMarker    = "===========END LINKS============"
	verticesMarker    = "VERTICES"
	endVerticesMarker = "===========END VERTICES============"
)

// Instance is the structural content of an encoded problem instance,
// as recovered by ParseInstance.
type Instance struct {
	Name        string
	NumVertices int
	NumEdges    int
	Depot       int
	Edges       []graph.Edge
	Coords      []geo.Coord // index i holds vertex id i+1
}

// EncodeInstance writes the solver's plaintext instance format: a header
// with vertex count, edge count and depot id; the LINKS block of
// `source,target,weight,isDirected,isRequired` lines (isRequired is always
// true, every street segment must be traversed); and the VERTICES block of
// `lon,lat` lines in ascending vertex-id order 1..N.
//
// The graph's vertex ids must be dense 1..N; the Normalizer/Extractor
// guarantee this before export.
func EncodeInstance(w io.Writer, name string, g *graph.Graph) error {
	if g.Depot != graph.DepotID {
		return errors.Errorf("graph depot is %d, want %d; run normalization first", g.Depot, graph.DepotID)
	}
	if !g.IsDense() {
		return errors.Errorf("vertex ids are not dense 1..%d; extract the largest component first", g.NumVertices())
	}

	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "NAME: %s\n", name); err != nil {
		return errors.Wrap(err, "can't write header")
	}
	if _, err := fmt.Fprintf(bw, "VERTICES: %d\n", g.NumVertices()); err != nil {
		return errors.Wrap(err, "can't write header")
	}
	if _, err := fmt.Fprintf(bw, "LINKS: %d\n", g.NumEdges()); err != nil {
		return errors.Wrap(err, "can't write header")
	}
	if _, err := fmt.Fprintf(bw, "DEPOT: %d\n", g.Depot); err != nil {
		return errors.Wrap(err, "can't write header")
	}

	if _, err := fmt.Fprintln(bw, linksMarker); err != nil {
		return errors.Wrap(err, "can't write links marker")
	}
	for i, e := range g.Edges {
		if e.Weight < 0 || e.Weight != e.Weight {
			return errors.Errorf("edge %d has invalid weight %v", i, e.Weight)
		}
		_, err := fmt.Fprintf(bw, "%d,%d,%s,%t,true\n",
			e.From, e.To, strconv.FormatFloat(e.Weight, 'f', 2, 64), e.Directed)
		if err != nil {
			return errors.Wrapf(err, "can't write link %d", i)
		}
	}
	if _, err := fmt.Fprintln(bw, endLinksMarker); err != nil {
		return errors.Wrap(err, "can't write links end marker")
	}

	if _, err := fmt.Fprintln(bw, verticesMarker); err != nil {
		return errors.Wrap(err, "can't write vertices marker")
	}
	for id := 1; id <= g.NumVertices(); id++ {
		c := g.Vertices[id]
		_, err := fmt.Fprintf(bw, "%s,%s\n",
			strconv.FormatFloat(c.Lon, 'f', 8, 64), strconv.FormatFloat(c.Lat, 'f', 8, 64))
		if err != nil {
			return errors.Wrapf(err, "can't write vertex %d", id)
		}
	}
	if _, err := fmt.Fprintln(bw, endVerticesMarker); err != nil {
		return errors.Wrap(err, "can't write vertices end marker")
	}

	return errors.Wrap(bw.Flush(), "can't flush instance")
}

// WriteInstanceFile encodes the instance to a file.
func WriteInstanceFile(path, name string, g *graph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "can't create file")
	}
	if err := EncodeInstance(f, name, g); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "can't close file")
}

// ParseInstance reads the instance format back. Used to verify exports
// structurally; malformed numeric text is rejected with its line number.
func ParseInstance(r io.Reader) (*Instance, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	inst := &Instance{NumVertices: -1, NumEdges: -1, Depot: -1}
	lineNo := 0

	readLine := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		lineNo++
		return strings.TrimSpace(sc.Text()), true
	}

	// Header lines until the LINKS marker.
	for {
		line, ok := readLine()
		if !ok {
			return nil, errors.Errorf("line %d: unexpected end of input before %s block", lineNo, linksMarker)
		}
		if line == linksMarker {
			break
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			return nil, errors.Errorf("line %d: malformed header line %q", lineNo, line)
		}
		value = strings.TrimSpace(value)
		var err error
		switch strings.TrimSpace(key) {
		case "NAME":
			inst.Name = value
		case "VERTICES":
			inst.NumVertices, err = strconv.Atoi(value)
		case "LINKS":
			inst.NumEdges, err = strconv.Atoi(value)
		case "DEPOT":
			inst.Depot, err = strconv.Atoi(value)
		default:
			return nil, errors.Errorf("line %d: unknown header key %q", lineNo, key)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: malformed header value %q", lineNo, value)
		}
	}
	if inst.NumVertices < 0 || inst.NumEdges < 0 || inst.Depot < 0 {
		return nil, errors.New("header is missing VERTICES, LINKS or DEPOT")
	}

	// LINKS block.
	for {
		line, ok := readLine()
		if !ok {
			return nil, errors.Errorf("line %d: unexpected end of input inside %s block", lineNo, linksMarker)
		}
		if line == endLinksMarker {
			break
		}
		parts := strings.Split(line, ",")
		if len(parts) != 5 {
			return nil, errors.Errorf("line %d: link needs 5 fields, got %d", lineNo, len(parts))
		}
		from, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad link source", lineNo)
		}
		to, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad link target", lineNo)
		}
		weight, err := strconv.ParseFloat(parts[2], 64)
		if err != nil || weight < 0 || weight != weight {
			return nil, errors.Errorf("line %d: bad link weight %q", lineNo, parts[2])
		}
		directed, err := strconv.ParseBool(parts[3])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad link direction flag", lineNo)
		}
		inst.Edges = append(inst.Edges, graph.Edge{From: from, To: to, Weight: weight, Directed: directed})
	}

	// VERTICES block.
	line, ok := readLine()
	if !ok || line != verticesMarker {
		return nil, errors.Errorf("line %d: expected %s marker, got %q", lineNo, verticesMarker, line)
	}
	for {
		line, ok := readLine()
		if !ok {
			return nil, errors.Errorf("line %d: unexpected end of input inside %s block", lineNo, verticesMarker)
		}
		if line == endVerticesMarker {
			break
		}
		lonStr, latStr, found := strings.Cut(line, ",")
		if !found {
			return nil, errors.Errorf("line %d: vertex needs lon,lat", lineNo)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad vertex longitude", lineNo)
		}
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad vertex latitude", lineNo)
		}
		inst.Coords = append(inst.Coords, geo.Coord{Lon: lon, Lat: lat})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan instance")
	}

	if len(inst.Edges) != inst.NumEdges {
		return nil, errors.Errorf("header says %d links, block has %d", inst.NumEdges, len(inst.Edges))
	}
	if len(inst.Coords) != inst.NumVertices {
		return nil, errors.Errorf("header says %d vertices, block has %d", inst.NumVertices, len(inst.Coords))
	}
	for i, e := range inst.Edges {
		if e.From < 1 || e.From > inst.NumVertices || e.To < 1 || e.To > inst.NumVertices {
			return nil, errors.Errorf("link %d references vertex outside 1..%d", i, inst.NumVertices)
		}
	}

	return inst, nil
}
