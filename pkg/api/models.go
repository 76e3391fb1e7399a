package api

// RouteRequest is the JSON body for POST /api/v1/route: the fetched road
// features for the selected area plus the depot map click.
type RouteRequest struct {
	Name     string        `json:"name"`
	Features []FeatureJSON `json:"features"`
	Depot    LatLngJSON    `json:"depot"`
}

// FeatureJSON is one road polyline with its OSM tags.
type FeatureJSON struct {
	Geometry []LatLngJSON      `json:"geometry"`
	Tags     map[string]string `json:"tags"`
}

// LatLngJSON represents a lat/lng pair in JSON.
type LatLngJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteResponse is the JSON response for a successful route generation.
type RouteResponse struct {
	Geometry    []LatLngJSON `json:"geometry"`
	Polyline    string       `json:"polyline"`
	GPX         string       `json:"gpx"`
	Synthetic   bool         `json:"synthetic"`
	RouteSource string       `json:"route_source"`
	NumVertices int          `json:"num_vertices"`
	NumEdges    int          `json:"num_edges"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	RoutesGenerated uint64 `json:"routes_generated"`
	SolverFailures  uint64 `json:"solver_failures"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
