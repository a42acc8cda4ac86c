package geo

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCanonicalZip(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"02134", "2134", true},
		{"2134", "2134", true},
		{"  10024", "10024", true},
		{"12345-6789", "12345", true},
		{"00000", "0", true},
		{"+501", "501", true},
		{"-07", "-7", true},
		{"", "", false},
		{"N/A", "", false},
		{"-", "", false},
	}
	for _, tt := range tests {
		got, ok := CanonicalZip(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("CanonicalZip(%q) = %q,%v want %q,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestZipIndexMatchesEitherForm(t *testing.T) {
	idx, err := ParseZipIndex(strings.NewReader(`{
		"02134": {"STCOUNTYFP": 25025},
		"1001": {"STCOUNTYFP": "01001"},
		"99999": {"STCOUNTYFP": null}
	}`))
	if err != nil {
		t.Fatalf("ParseZipIndex: %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("Len = %d, want 2", idx.Len())
	}
	for _, zip := range []string{"02134", "2134"} {
		if f, ok := idx.Lookup(zip); !ok || f != 25025 {
			t.Fatalf("Lookup(%q) = %v,%v want 25025,true", zip, f, ok)
		}
	}
	if f, ok := idx.Lookup("01001"); !ok || f != 1001 {
		t.Fatalf("Lookup(01001) = %v,%v want 1001,true", f, ok)
	}
	if f := FIPS(1001); f.String() != "01001" {
		t.Fatalf("FIPS.String = %q", f.String())
	}
	if _, ok := idx.Lookup("99999"); ok {
		t.Fatalf("null county should not be indexed")
	}
	var none *ZipIndex
	if _, ok := none.Lookup("02134"); ok || none.Len() != 0 {
		t.Fatalf("nil index matched")
	}
}

func TestZipIndexCollisionsAreDeterministic(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]FIPS
		want FIPS
	}{
		{"canonical key wins", map[string]FIPS{"02134": 1, "2134": 2, "002134": 3}, 2},
		{"smallest raw key otherwise", map[string]FIPS{"02134": 1, "002134": 3, " 2134": 4}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				idx := NewZipIndex(tt.in)
				if f, ok := idx.Lookup("2134"); !ok || f != tt.want {
					t.Fatalf("Lookup(2134) = %v,%v want %v,true", f, ok, tt.want)
				}
				if idx.Len() != 1 {
					t.Fatalf("Len = %d, want 1", idx.Len())
				}
			}
		})
	}
}

func TestLoadZipIndexMissingFile(t *testing.T) {
	if _, err := LoadZipIndex(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

const statesGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "06", "properties": {"name": "California"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[4,0],[4,2],[0,2],[0,0]]]}},
    {"type": "Feature", "id": 1001, "properties": {"name": "Autauga"},
     "geometry": {"type": "Polygon", "coordinates": [[[10,10],[12,10],[12,12],[10,12],[10,10]]]}},
    {"type": "Feature", "properties": {"name": "Nowhere"}, "geometry": null}
  ]
}`

func TestParseFeatures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "states.json")
	if err := os.WriteFile(path, []byte(statesGeoJSON), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	feats, err := LoadFeatures(path)
	if err != nil {
		t.Fatalf("LoadFeatures: %v", err)
	}
	if len(feats) != 3 {
		t.Fatalf("features = %d, want 3", len(feats))
	}
	ca := feats[0]
	if ca.Name != "California" || !ca.HasFIPS || ca.FIPS != 6 {
		t.Fatalf("california = %+v", ca)
	}
	if !ca.HasCentroid || math.Abs(ca.Centroid[0]-2) > 1e-9 || math.Abs(ca.Centroid[1]-1) > 1e-9 {
		t.Fatalf("california centroid = %v, want [2 1]", ca.Centroid)
	}
	if feats[1].ID != "1001" || feats[1].FIPS != 1001 {
		t.Fatalf("numeric id = %q/%v", feats[1].ID, feats[1].FIPS)
	}
	if feats[2].HasCentroid || feats[2].HasFIPS {
		t.Fatalf("null geometry feature = %+v", feats[2])
	}
}
