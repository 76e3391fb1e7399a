package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"
	"os"
	"sync/atomic"

	"go.uber.org/zap"

	"arc_router/pkg/geo"
	"arc_router/pkg/graph"
	"arc_router/pkg/registry"
	"arc_router/pkg/roads"
	"arc_router/pkg/route"
	"arc_router/pkg/snap"
	"arc_router/pkg/solver"
)

// Feature payloads carry full street geometry for a map viewport, so the
// request limit is far above the usual JSON-API default.
const maxRequestBytes = 32 << 20

// SolveFunc invokes the external arc-routing solver on an encoded instance
// file and returns its raw output. Injected so tests can stub the solver.
type SolveFunc func(ctx context.Context, instancePath string) ([]byte, error)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	solve SolveFunc
	log   *zap.Logger

	routesGenerated atomic.Uint64
	solverFailures  atomic.Uint64
}

// NewHandlers creates handlers with the given solver.
func NewHandlers(solve SolveFunc, log *zap.Logger) *Handlers {
	return &Handlers{
		solve: solve,
		log:   log,
	}
}

// HandleRoute handles POST /api/v1/route: build the road graph from the
// submitted features, normalize the depot, export the largest component,
// run the solver and return the reconstructed tour.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	// Enforce Content-Type.
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	// Parse request.
	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}
	if err := validateCoord(req.Depot); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "depot")
		return
	}
	if req.Name == "" {
		req.Name = "arc route"
	}

	// Keep only traversable road features.
	features := make([]roads.Feature, 0, len(req.Features))
	for _, fj := range req.Features {
		points := make([]geo.Coord, len(fj.Geometry))
		for i, ll := range fj.Geometry {
			if err := validateCoord(ll); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_coordinates", "features")
				return
			}
			points[i] = geo.Coord{Lon: ll.Lng, Lat: ll.Lat}
		}
		if f, ok := roads.FromTags(points, roads.Tags(fj.Tags)); ok {
			features = append(features, f)
		}
	}

	reg := registry.New()
	full, err := graph.Build(features, reg)
	if err != nil {
		writeError(w, http.StatusBadRequest, "no_road_features", "features")
		return
	}

	// Snap the map click to the nearest graph vertex.
	_, depot, err := snap.NewIndex(full).NearestVertex(geo.Coord{Lon: req.Depot.Lng, Lat: req.Depot.Lat})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "depot")
		return
	}

	// The solver needs a connected graph with dense vertex ids, so the
	// largest component is always exported.
	g, creg, err := graph.ExtractLargestComponent(full, depot)
	if err != nil {
		switch {
		case errors.Is(err, graph.ErrDepotOutsideComponent):
			writeError(w, http.StatusUnprocessableEntity, "depot_outside_largest_component", "depot")
		case errors.Is(err, graph.ErrDepotUnreachable):
			writeError(w, http.StatusUnprocessableEntity, "depot_unreachable", "depot")
		default:
			h.log.Error("component extraction failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal_error", "")
		}
		return
	}

	tour, err := h.runSolver(r.Context(), req.Name, g)
	if err != nil {
		switch {
		case errors.Is(err, solver.ErrNoRoute):
			h.solverFailures.Add(1)
			writeError(w, http.StatusNotFound, "no_route_found", "")
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, "request_timeout", "")
		default:
			h.solverFailures.Add(1)
			h.log.Error("solver run failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "solver_failed", "")
		}
		return
	}

	path := route.Reconstruct(tour.Path, creg)

	var gpx bytes.Buffer
	if err := route.WriteGPX(&gpx, req.Name, path); err != nil {
		h.log.Error("gpx encoding failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	resp := RouteResponse{
		Geometry:    make([]LatLngJSON, len(path.Points)),
		Polyline:    route.EncodePolyline(path),
		GPX:         gpx.String(),
		Synthetic:   path.Synthetic,
		RouteSource: tour.Source.String(),
		NumVertices: g.NumVertices(),
		NumEdges:    g.NumEdges(),
	}
	for i, pt := range path.Points {
		resp.Geometry[i] = LatLngJSON{Lat: pt.Lat, Lng: pt.Lon}
	}

	h.routesGenerated.Add(1)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// runSolver encodes the instance to a temp file, runs the solver on it and
// decodes the returned tour.
func (h *Handlers) runSolver(ctx context.Context, name string, g *graph.Graph) (solver.Route, error) {
	f, err := os.CreateTemp("", "arc-instance-*.txt")
	if err != nil {
		return solver.Route{}, err
	}
	instancePath := f.Name()
	f.Close()
	defer os.Remove(instancePath)

	if err := solver.WriteInstanceFile(instancePath, name, g); err != nil {
		return solver.Route{}, err
	}
	out, err := h.solve(ctx, instancePath)
	if err != nil {
		return solver.Route{}, err
	}
	return solver.DecodeRoute(bytes.NewReader(out))
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(StatsResponse{
		RoutesGenerated: h.routesGenerated.Load(),
		SolverFailures:  h.solverFailures.Load(),
	})
}

func validateCoord(ll LatLngJSON) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}
