package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"arc_router/pkg/geo"
	"arc_router/pkg/graph"
	"arc_router/pkg/registry"
	"arc_router/pkg/roads"
	"arc_router/pkg/snap"
	"arc_router/pkg/solver"
)

func main() {
	input := flag.String("input", "", "Path to .osm.pbf file or Overpass JSON export")
	format := flag.String("format", "", "Input format: pbf or overpass (default: guess from extension)")
	depot := flag.String("depot", "", "Depot location as lat,lng (snapped to the nearest street vertex)")
	name := flag.String("name", "arc route", "Instance name written into the header")
	output := flag.String("output", "instance.txt", "Output instance file path")
	session := flag.String("session", "session.bin", "Session file path for the decode step (empty = skip)")
	largest := flag.Bool("largest-component", true, "Restrict the graph to its largest connected component")
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng (PBF input only)")
	flag.Parse()

	if *input == "" || *depot == "" {
		fmt.Fprintln(os.Stderr, "Usage: export --input <file.osm.pbf|overpass.json> --depot lat,lng [--output instance.txt] [--session session.bin] [--largest-component=false] [--bbox minLat,minLng,maxLat,maxLng]")
		os.Exit(1)
	}

	var depotLat, depotLng float64
	if _, err := fmt.Sscanf(*depot, "%f,%f", &depotLat, &depotLng); err != nil {
		log.Fatalf("Invalid depot format (expected lat,lng): %v", err)
	}

	start := time.Now()

	// Step 1: Load road features.
	log.Println("Opening input file...")
	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	var features []roads.Feature
	switch inputFormat(*format, *input) {
	case "overpass":
		log.Println("Parsing Overpass JSON...")
		features, err = roads.LoadOverpassJSON(f)
	case "pbf":
		var opts roads.LoadOptions
		if *bbox != "" {
			var minLat, minLng, maxLat, maxLng float64
			if _, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng); err != nil {
				log.Fatalf("Invalid bbox format (expected minLat,minLng,maxLat,maxLng): %v", err)
			}
			opts.BBox = roads.BBox{MinLat: minLat, MaxLat: maxLat, MinLon: minLng, MaxLon: maxLng}
			log.Printf("Using bounding box filter: lat [%.4f, %.4f], lng [%.4f, %.4f]", minLat, maxLat, minLng, maxLng)
		}
		log.Println("Parsing OSM PBF data...")
		features, err = roads.LoadPBF(context.Background(), f, opts)
	default:
		log.Fatalf("Unknown input format %q (want pbf or overpass)", *format)
	}
	if err != nil {
		log.Fatalf("Failed to load road features: %v", err)
	}
	log.Printf("Loaded %d road features", len(features))

	// Step 2: Build graph.
	log.Println("Building graph...")
	reg := registry.New()
	g, err := graph.Build(features, reg)
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}
	log.Printf("Graph: %d vertices, %d edges", g.NumVertices(), g.NumEdges())

	// Step 3: Snap the depot to the nearest vertex.
	id, depotCoord, err := snap.NewIndex(g).NearestVertex(geo.Coord{Lon: depotLng, Lat: depotLat})
	if err != nil {
		log.Fatalf("Failed to place depot: %v", err)
	}
	log.Printf("Depot snapped to vertex %d at %.8f,%.8f", id, depotCoord.Lat, depotCoord.Lon)

	// Step 4: Normalize, restricting to the largest component if asked.
	if *largest {
		log.Println("Extracting largest connected component...")
		before := g.NumVertices()
		g, reg, err = graph.ExtractLargestComponent(g, depotCoord)
		if err != nil {
			log.Fatalf("Failed to extract component: %v", err)
		}
		log.Printf("Largest component: %d vertices (%.1f%%), %d edges",
			g.NumVertices(), float64(g.NumVertices())/float64(before)*100, g.NumEdges())
	} else {
		if err := graph.Normalize(g, depotCoord, reg); err != nil {
			log.Fatalf("Failed to normalize depot: %v", err)
		}
	}

	// Step 5: Write the instance and the session file for decode.
	log.Printf("Writing instance to %s...", *output)
	if err := solver.WriteInstanceFile(*output, *name, g); err != nil {
		log.Fatalf("Failed to write instance: %v", err)
	}
	if *session != "" {
		log.Printf("Writing session to %s...", *session)
		if err := graph.WriteSession(*session, g); err != nil {
			log.Fatalf("Failed to write session: %v", err)
		}
	}

	elapsed := time.Since(start)
	log.Printf("Done in %s. Output: %s", elapsed.Round(time.Millisecond), *output)
}

// inputFormat resolves the explicit flag or guesses from the file name.
func inputFormat(format, path string) string {
	if format != "" {
		return format
	}
	if strings.HasSuffix(path, ".json") {
		return "overpass"
	}
	return "pbf"
}
