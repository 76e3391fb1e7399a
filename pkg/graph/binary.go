package graph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"arc_router/pkg/geo"
	"arc_router/pkg/registry"
)

const (
	magicBytes  = "ARCROUTE"
	version     = uint32(1)
	maxVertices = 10_000_000
	maxEdges    = 50_000_000
)

// sessionHeader is the binary header of a session file.
type sessionHeader struct {
	Magic       [8]byte
	Version     uint32
	NumVertices uint32
	NumEdges    uint32
	Depot       uint32
}

// WriteSession persists the graph and its vertex numbering to a binary file
// so a later decode run can map solver output back to coordinates. Writes to
// a temp file and renames, so a crash never leaves a truncated session.
func WriteSession(path string, g *Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	crcWriter := crc32Writer{w: f, hash: crc32.NewIEEE()}
	w := &crcWriter

	hdr := sessionHeader{
		Version:     version,
		NumVertices: uint32(g.NumVertices()),
		NumEdges:    uint32(g.NumEdges()),
		Depot:       uint32(g.Depot),
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	// Vertex block: id, lon, lat per retained vertex, ascending id order.
	// Ids are stored explicitly because pre-extraction numbering may have gaps.
	for _, id := range g.VertexIDs() {
		c := g.Vertices[id]
		if err := binary.Write(w, binary.LittleEndian, uint32(id)); err != nil {
			return fmt.Errorf("write vertex id %d: %w", id, err)
		}
		if err := binary.Write(w, binary.LittleEndian, [2]float64{c.Lon, c.Lat}); err != nil {
			return fmt.Errorf("write vertex coord %d: %w", id, err)
		}
	}

	// Edge block.
	for i, e := range g.Edges {
		directed := uint32(0)
		if e.Directed {
			directed = 1
		}
		if err := binary.Write(w, binary.LittleEndian, [3]uint32{uint32(e.From), uint32(e.To), directed}); err != nil {
			return fmt.Errorf("write edge %d endpoints: %w", i, err)
		}
		if err := binary.Write(w, binary.LittleEndian, e.Weight); err != nil {
			return fmt.Errorf("write edge %d weight: %w", i, err)
		}
	}

	// CRC32 trailer.
	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Atomic rename.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// ReadSession loads a persisted graph and rebuilds a registry holding its
// exact vertex numbering.
func ReadSession(path string) (*Graph, *registry.Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	crcReader := crc32Reader{r: f, hash: crc32.NewIEEE()}
	r := &crcReader

	var hdr sessionHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumVertices > maxVertices {
		return nil, nil, fmt.Errorf("vertex count %d exceeds limit %d", hdr.NumVertices, maxVertices)
	}
	if hdr.NumEdges > maxEdges {
		return nil, nil, fmt.Errorf("edge count %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}

	g := &Graph{
		Vertices: make(map[int]geo.Coord, hdr.NumVertices),
		Depot:    int(hdr.Depot),
	}
	reg := registry.New()

	for i := uint32(0); i < hdr.NumVertices; i++ {
		var id uint32
		var coord [2]float64
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, nil, fmt.Errorf("read vertex %d id: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &coord); err != nil {
			return nil, nil, fmt.Errorf("read vertex %d coord: %w", i, err)
		}
		c := geo.Coord{Lon: coord[0], Lat: coord[1]}
		g.Vertices[int(id)] = c
		reg.Restore(int(id), c)
	}

	g.Edges = make([]Edge, hdr.NumEdges)
	for i := range g.Edges {
		var ends [3]uint32
		var weight float64
		if err := binary.Read(r, binary.LittleEndian, &ends); err != nil {
			return nil, nil, fmt.Errorf("read edge %d endpoints: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &weight); err != nil {
			return nil, nil, fmt.Errorf("read edge %d weight: %w", i, err)
		}
		from, to := int(ends[0]), int(ends[1])
		if _, ok := g.Vertices[from]; !ok {
			return nil, nil, fmt.Errorf("edge %d references unknown vertex %d", i, from)
		}
		if _, ok := g.Vertices[to]; !ok {
			return nil, nil, fmt.Errorf("edge %d references unknown vertex %d", i, to)
		}
		if weight < 0 || weight != weight {
			return nil, nil, fmt.Errorf("edge %d has invalid weight %v", i, weight)
		}
		g.Edges[i] = Edge{From: from, To: to, Weight: weight, Directed: ends[2] == 1}
	}

	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	return g, reg, nil
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
