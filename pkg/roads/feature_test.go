package roads

import (
	"strings"
	"testing"

	"arc_router/pkg/geo"
)

func TestTraversable(t *testing.T) {
	tests := []struct {
		name string
		tags Tags
		want bool
	}{
		{
			name: "residential street",
			tags: Tags{"highway": "residential"},
			want: true,
		},
		{
			name: "motorway excluded",
			tags: Tags{"highway": "motorway"},
			want: false,
		},
		{
			name: "footway excluded",
			tags: Tags{"highway": "footway"},
			want: false,
		},
		{
			name: "cycleway excluded",
			tags: Tags{"highway": "cycleway"},
			want: false,
		},
		{
			name: "private access",
			tags: Tags{"highway": "residential", "access": "private"},
			want: false,
		},
		{
			name: "customers access",
			tags: Tags{"highway": "residential", "access": "customers"},
			want: false,
		},
		{
			name: "area=yes (plaza)",
			tags: Tags{"highway": "pedestrian", "area": "yes"},
			want: false,
		},
		{
			name: "foot=no",
			tags: Tags{"highway": "residential", "foot": "no"},
			want: false,
		},
		{
			name: "toll road",
			tags: Tags{"highway": "primary", "toll": "yes"},
			want: false,
		},
		{
			name: "driveway excluded",
			tags: Tags{"highway": "service", "service": "driveway"},
			want: false,
		},
		{
			name: "plain service road",
			tags: Tags{"highway": "service"},
			want: true,
		},
		{
			name: "living street",
			tags: Tags{"highway": "living_street"},
			want: true,
		},
		{
			name: "no highway tag",
			tags: Tags{"name": "Some Street"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Traversable(tt.tags); got != tt.want {
				t.Errorf("Traversable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyDirection(t *testing.T) {
	tests := []struct {
		name           string
		tags           Tags
		wantOneway     bool
		wantReversed   bool
		wantRoundabout bool
		wantSkip       bool
	}{
		{
			name: "default two-way",
			tags: Tags{"highway": "residential"},
		},
		{
			name:       "oneway=yes",
			tags:       Tags{"highway": "primary", "oneway": "yes"},
			wantOneway: true,
		},
		{
			name:       "oneway=true",
			tags:       Tags{"highway": "primary", "oneway": "true"},
			wantOneway: true,
		},
		{
			name:       "oneway=1",
			tags:       Tags{"highway": "primary", "oneway": "1"},
			wantOneway: true,
		},
		{
			name:         "oneway=-1 reversed",
			tags:         Tags{"highway": "primary", "oneway": "-1"},
			wantOneway:   true,
			wantReversed: true,
		},
		{
			name:         "oneway=reverse",
			tags:         Tags{"highway": "primary", "oneway": "reverse"},
			wantOneway:   true,
			wantReversed: true,
		},
		{
			name:           "roundabout forces directed",
			tags:           Tags{"highway": "residential", "junction": "roundabout"},
			wantRoundabout: true,
		},
		{
			name:     "reversible skipped",
			tags:     Tags{"highway": "primary", "oneway": "reversible"},
			wantSkip: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oneway, reversed, roundabout, skip := classifyDirection(tt.tags)
			if oneway != tt.wantOneway || reversed != tt.wantReversed ||
				roundabout != tt.wantRoundabout || skip != tt.wantSkip {
				t.Errorf("classifyDirection() = (%v, %v, %v, %v), want (%v, %v, %v, %v)",
					oneway, reversed, roundabout, skip,
					tt.wantOneway, tt.wantReversed, tt.wantRoundabout, tt.wantSkip)
			}
		})
	}
}

func TestFromTags(t *testing.T) {
	pts := []geo.Coord{{Lon: -0.1, Lat: 51.5}, {Lon: -0.101, Lat: 51.5005}}

	f, ok := FromTags(pts, Tags{"highway": "residential", "junction": "roundabout"})
	if !ok {
		t.Fatal("expected feature")
	}
	if !f.Directed() {
		t.Error("roundabout feature must be directed")
	}

	if _, ok := FromTags(pts[:1], Tags{"highway": "residential"}); ok {
		t.Error("single-point geometry must be rejected")
	}
	if _, ok := FromTags(pts, Tags{"highway": "footway"}); ok {
		t.Error("non-traversable way must be rejected")
	}
	if _, ok := FromTags(pts, Tags{"highway": "primary", "oneway": "reversible"}); ok {
		t.Error("reversible way must be rejected")
	}
}

func TestLoadOverpassJSON(t *testing.T) {
	payload := `{
		"elements": [
			{
				"type": "way", "id": 1,
				"tags": {"highway": "residential"},
				"geometry": [{"lat": 51.5, "lon": -0.1}, {"lat": 51.5005, "lon": -0.101}]
			},
			{
				"type": "way", "id": 2,
				"tags": {"highway": "primary", "oneway": "yes"},
				"geometry": [{"lat": 51.501, "lon": -0.102}, {"lat": 51.5015, "lon": -0.103}]
			},
			{
				"type": "way", "id": 3,
				"tags": {"highway": "footway"},
				"geometry": [{"lat": 51.502, "lon": -0.104}, {"lat": 51.5025, "lon": -0.105}]
			},
			{"type": "node", "id": 4}
		]
	}`

	features, err := LoadOverpassJSON(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("LoadOverpassJSON: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("got %d features, want 2 (footway and node dropped)", len(features))
	}
	if features[0].Directed() {
		t.Error("residential way must be undirected")
	}
	if !features[1].Oneway {
		t.Error("oneway way must be directed")
	}
}

func TestLoadOverpassJSONRejectsOutOfRange(t *testing.T) {
	payload := `{
		"elements": [
			{
				"type": "way", "id": 1,
				"tags": {"highway": "residential"},
				"geometry": [{"lat": 91.0, "lon": -0.1}, {"lat": 51.5, "lon": -0.101}]
			}
		]
	}`

	if _, err := LoadOverpassJSON(strings.NewReader(payload)); err == nil {
		t.Fatal("expected out-of-range coordinate error")
	}
}

func TestLoadOverpassJSONMalformed(t *testing.T) {
	if _, err := LoadOverpassJSON(strings.NewReader("not json")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestBBoxContains(t *testing.T) {
	b := BBox{MinLat: 51.4, MaxLat: 51.6, MinLon: -0.2, MaxLon: 0.0}
	if !b.Contains(geo.Coord{Lon: -0.1, Lat: 51.5}) {
		t.Error("point inside bbox reported outside")
	}
	if b.Contains(geo.Coord{Lon: 0.1, Lat: 51.5}) {
		t.Error("point outside bbox reported inside")
	}
	if (BBox{}).IsZero() != true {
		t.Error("zero bbox must report IsZero")
	}
}
