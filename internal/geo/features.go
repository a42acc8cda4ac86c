package geo

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Feature is one region outline reduced to what the map needs.
type Feature struct {
	// ID is the feature id as text; for counties it is the FIPS code.
	ID   string
	Name string
	// FIPS is set when ID is numeric.
	FIPS        FIPS
	HasFIPS     bool
	Centroid    orb.Point
	HasCentroid bool
}

// ParseFeatures decodes a GeoJSON FeatureCollection.
func ParseFeatures(data []byte) ([]Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	out := make([]Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		feat := Feature{
			ID:   featureID(f.ID),
			Name: f.Properties.MustString("name", ""),
		}
		if n, err := strconv.Atoi(feat.ID); err == nil {
			feat.FIPS, feat.HasFIPS = FIPS(n), true
		}
		if f.Geometry != nil {
			c, _ := planar.CentroidArea(f.Geometry)
			if finite(c) {
				feat.Centroid, feat.HasCentroid = c, true
			}
		}
		out = append(out, feat)
	}
	return out, nil
}

// LoadFeatures reads a GeoJSON FeatureCollection file.
func LoadFeatures(path string) ([]Feature, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	return ParseFeatures(b)
}

func featureID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func finite(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsNaN(p[1]) && !math.IsInf(p[0], 0) && !math.IsInf(p[1], 0)
}
