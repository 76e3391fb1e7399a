package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"arc_router/pkg/graph"
	"arc_router/pkg/route"
	"arc_router/pkg/solver"
)

func main() {
	session := flag.String("session", "session.bin", "Session file written by the export step")
	input := flag.String("input", "", "Solver output file (empty = stdin)")
	name := flag.String("name", "arc route", "Track name written into the GPX output")
	gpxOut := flag.String("gpx", "route.gpx", "GPX output path (empty = skip)")
	geojsonOut := flag.String("geojson", "", "GeoJSON output path (empty = skip)")
	polylineOut := flag.String("polyline", "", "Encoded polyline output path (empty = skip)")
	flag.Parse()

	start := time.Now()

	// Step 1: Restore the graph and vertex numbering from the export run.
	log.Printf("Loading session from %s...", *session)
	g, reg, err := graph.ReadSession(*session)
	if err != nil {
		log.Fatalf("Failed to load session: %v", err)
	}
	log.Printf("Session: %d vertices, %d edges", g.NumVertices(), g.NumEdges())

	// Step 2: Decode the solver output.
	var r io.Reader = os.Stdin
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatalf("Failed to open solver output: %v", err)
		}
		defer f.Close()
		r = f
	}
	tour, err := solver.DecodeRoute(r)
	if err != nil {
		log.Fatalf("Failed to decode solver output: %v", err)
	}
	log.Printf("Decoded %d-vertex tour (%s format)", len(tour.Path), tour.Source)

	// Step 3: Reconstruct the geographic path.
	p := route.Reconstruct(tour.Path, reg)
	if p.Synthetic {
		log.Println("WARNING: no tour vertex mapped to a coordinate; emitting demo walk")
	}
	log.Printf("Reconstructed %d points", len(p.Points))

	// Step 4: Write the requested output formats.
	if *gpxOut != "" {
		if err := writeGPXFile(*gpxOut, *name, p); err != nil {
			log.Fatalf("Failed to write GPX: %v", err)
		}
		log.Printf("Wrote %s", *gpxOut)
	}
	if *geojsonOut != "" {
		b, err := route.ToGeoJSON(p)
		if err != nil {
			log.Fatalf("Failed to encode GeoJSON: %v", err)
		}
		if err := os.WriteFile(*geojsonOut, b, 0o644); err != nil {
			log.Fatalf("Failed to write GeoJSON: %v", err)
		}
		log.Printf("Wrote %s", *geojsonOut)
	}
	if *polylineOut != "" {
		if err := os.WriteFile(*polylineOut, []byte(route.EncodePolyline(p)), 0o644); err != nil {
			log.Fatalf("Failed to write polyline: %v", err)
		}
		log.Printf("Wrote %s", *polylineOut)
	}

	log.Printf("Done in %s", time.Since(start).Round(time.Millisecond))
}

func writeGPXFile(path, name string, p route.Path) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := route.WriteGPX(f, name, p); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
