package geo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/traffic_alert_bot/internal/models"
)

func TestNewBBox_Normalizes(t *testing.T) {
	box := NewBBox(55.91, 37.85, 55.55, 37.35)

	assert.Equal(t, BBox{LatMin: 55.55, LonMin: 37.35, LatMax: 55.91, LonMax: 37.85}, box)
}

func TestBBox_ContainsInclusive(t *testing.T) {
	box := NewBBox(0, 0, 1, 1)

	assert.True(t, box.Contains(0, 0))
	assert.True(t, box.Contains(1, 1))
	assert.True(t, box.Contains(0.5, 0.5))
	assert.False(t, box.Contains(1.0001, 0.5))
	assert.False(t, box.Contains(0.5, -0.0001))
}

func TestCoverTiles_ContainsCornersWithOffset(t *testing.T) {
	cases := []struct {
		name string
		box  BBox
		zoom int
	}{
		{"moscow z11", NewBBox(55.55, 37.35, 55.91, 37.85), 11},
		{"unit box z10", NewBBox(0, 0, 1, 1), 10},
		{"southern hemisphere", NewBBox(-34.1, 150.9, -33.6, 151.4), 12},
		{"single point", NewBBox(48.85, 2.35, 48.85, 2.35), 14},
		{"low zoom", NewBBox(-60, -170, 60, 170), 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := CoverTiles(tc.box, tc.zoom)
			require.NoError(t, err)

			for _, corner := range [][2]float64{{tc.box.LatMin, tc.box.LonMin}, {tc.box.LatMax, tc.box.LonMax}} {
				tile := TileAt(corner[0], corner[1], tc.zoom)
				tile.Y += IncidentLayerRowOffset
				assert.True(t, r.Contains(tile), "corner %v tile %+v outside %+v", corner, tile, r)
			}
			assert.LessOrEqual(t, r.XMin, r.XMax)
			assert.LessOrEqual(t, r.YMin, r.YMax)
			assert.Equal(t, r.Count(), len(r.Tiles()))
		})
	}
}

func TestCoverTiles_KnownValues(t *testing.T) {
	// z=1: северо-западная четверть - (0,0), юго-восточная - (1,1)
	r, err := CoverTiles(NewBBox(-10, -10, 10, 10), 1)
	require.NoError(t, err)

	assert.Equal(t, uint32(0), r.XMin)
	assert.Equal(t, uint32(1), r.XMax)
	assert.Equal(t, uint32(2), r.YMin)
	assert.Equal(t, uint32(3), r.YMax)
	assert.Equal(t, 4, r.Count())
}

func TestCoverTiles_InvalidZoom(t *testing.T) {
	_, err := CoverTiles(NewBBox(0, 0, 1, 1), 0)
	assert.ErrorIs(t, err, ErrInvalidZoom)

	_, err = CoverTiles(NewBBox(0, 0, 1, 1), -3)
	assert.ErrorIs(t, err, ErrInvalidZoom)
}

func TestTileRange_TilesOrder(t *testing.T) {
	r := TileRange{XMin: 5, XMax: 6, YMin: 10, YMax: 11, Z: 3}

	tiles := r.Tiles()

	require.Len(t, tiles, 4)
	assert.Equal(t, [2]uint32{5, 10}, [2]uint32{tiles[0].X, tiles[0].Y})
	assert.Equal(t, [2]uint32{5, 11}, [2]uint32{tiles[1].X, tiles[1].Y})
	assert.Equal(t, [2]uint32{6, 10}, [2]uint32{tiles[2].X, tiles[2].Y})
	assert.Equal(t, [2]uint32{6, 11}, [2]uint32{tiles[3].X, tiles[3].Y})
}

func rawFeatures(t *testing.T, features ...string) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, len(features))
	for i, f := range features {
		require.True(t, json.Valid([]byte(f)), f)
		out[i] = json.RawMessage(f)
	}
	return out
}

func TestExtractIncidents_AccidentInsideBounds(t *testing.T) {
	features := rawFeatures(t,
		`{"type":"Feature","geometry":{"type":"Point","coordinates":[0.5,0.5]},"properties":{"eventType":1,"description":"crash A"}}`,
		`{"type":"Feature","geometry":{"type":"Point","coordinates":[0.6,0.6]},"properties":{"eventType":2,"description":"roadworks"}}`,
	)

	incidents, skipped := ExtractIncidents(features, NewBBox(0, 0, 1, 1))

	assert.Equal(t, models.IncidentSet{{Lat: 0.5, Lon: 0.5}: "crash A"}, incidents)
	assert.Zero(t, skipped)
}

func TestExtractIncidents_OutsideBoundsDropped(t *testing.T) {
	features := rawFeatures(t,
		`{"type":"Feature","geometry":{"type":"Point","coordinates":[2.0,0.5]},"properties":{"eventType":1,"description":"far"}}`,
		`{"type":"Feature","geometry":{"type":"Point","coordinates":[1.0,1.0]},"properties":{"eventType":1,"description":"edge"}}`,
	)

	incidents, _ := ExtractIncidents(features, NewBBox(0, 0, 1, 1))

	assert.Equal(t, models.IncidentSet{{Lat: 1, Lon: 1}: "edge"}, incidents)
}

func TestExtractIncidents_MalformedFeaturesSkipped(t *testing.T) {
	features := rawFeatures(t,
		`{"type":"Feature","geometry":{"type":"Point","coordinates":[0.1,0.1]},"properties":{"description":"no type"}}`,
		`{"type":"Feature","geometry":{"type":"Point","coordinates":[0.2,0.2]},"properties":{"eventType":"1","description":"string type"}}`,
		`{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0.3,0.3],[0.4,0.4]]},"properties":{"eventType":1,"description":"line"}}`,
		`{"type":"Feature","geometry":{"type":"Point","coordinates":[0.5,0.5]},"properties":{"eventType":1}}`,
		`[1,2,3]`,
		`{"type":"Feature","geometry":{"type":"Point","coordinates":[0.7,0.7]},"properties":{"eventType":1,"description":"ok"}}`,
	)

	incidents, skipped := ExtractIncidents(features, NewBBox(0, 0, 1, 1))

	assert.Equal(t, models.IncidentSet{{Lat: 0.7, Lon: 0.7}: "ok"}, incidents)
	assert.Equal(t, 5, skipped)
}

func TestExtractIncidents_UntypedFeature(t *testing.T) {
	features := rawFeatures(t,
		`{"geometry":{"coordinates":[0.5,0.5]},"properties":{"eventType":1,"description":"crash A"}}`,
		`{"type":"Feature","geometry":{"coordinates":[0.4,0.4]},"properties":{"eventType":1,"description":"crash B"}}`,
		`{"geometry":{"coordinates":[0.3,0.3,10]},"properties":{"eventType":1,"description":"3d"}}`,
		`{"geometry":{},"properties":{"eventType":1,"description":"no coordinates"}}`,
	)

	incidents, skipped := ExtractIncidents(features, NewBBox(0, 0, 1, 1))

	assert.Equal(t, models.IncidentSet{
		{Lat: 0.5, Lon: 0.5}: "crash A",
		{Lat: 0.4, Lon: 0.4}: "crash B",
	}, incidents)
	assert.Equal(t, 2, skipped)
}

func TestExtractIncidents_Empty(t *testing.T) {
	incidents, skipped := ExtractIncidents(nil, NewBBox(0, 0, 1, 1))

	assert.Empty(t, incidents)
	assert.NotNil(t, incidents)
	assert.Zero(t, skipped)
}
