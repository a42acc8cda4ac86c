package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/julian-george/dali-datascience-app/internal/analysis"
)

// Level is the depth of the bar chart.
type Level int

const (
	LevelRoot Level = iota
	LevelCategory
)

func (l Level) String() string {
	if l == LevelCategory {
		return "CATEGORY"
	}
	return "ROOT"
}

func (l Level) MarshalJSON() ([]byte, error) { return json.Marshal(l.String()) }

func (l *Level) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch strings.ToUpper(s) {
	case "ROOT":
		*l = LevelRoot
	case "CATEGORY":
		*l = LevelCategory
	default:
		return fmt.Errorf("unknown drill level %q", s)
	}
	return nil
}

// DrillState is the bar chart's position. Selected is set only at LevelCategory.
type DrillState struct {
	Level    Level  `json:"level"`
	Selected string `json:"selected,omitempty"`
}

// Root is the top-level state.
func Root() DrillState { return DrillState{Level: LevelRoot} }

// DrillInto moves from the root to category. It returns the prior state and
// false when s is not at the root or category is not in tree.
func DrillInto(s DrillState, tree *analysis.CategoryTree, category string) (DrillState, bool) {
	if s.Level != LevelRoot || !tree.Has(category) {
		return s, false
	}
	return DrillState{Level: LevelCategory, Selected: category}, true
}

// DrillOut returns to the root. It returns s and false when already there.
func DrillOut(s DrillState) (DrillState, bool) {
	if s.Level != LevelCategory {
		return s, false
	}
	return Root(), true
}

// ViewItem is one bar of the current view.
type ViewItem struct {
	Label string  `json:"label"`
	Mean  float64 `json:"mean"`
}

// CurrentView lists categories at the root, or the sub-categories of the
// selected category, in order of first appearance.
func CurrentView(s DrillState, tree *analysis.CategoryTree) []ViewItem {
	var out []ViewItem
	if s.Level == LevelCategory {
		for _, sub := range tree.SubCategories(s.Selected) {
			st, _ := tree.SubStat(s.Selected, sub)
			out = append(out, ViewItem{Label: sub, Mean: st.Mean})
		}
		return out
	}
	for _, cat := range tree.Categories() {
		st, _ := tree.Stat(cat)
		out = append(out, ViewItem{Label: cat, Mean: st.Mean})
	}
	return out
}

// Mode selects which circle list the map shows.
type Mode string

const (
	ModeState  Mode = "STATE"
	ModeCounty Mode = "COUNTY"
)

// DefaultMode is the map mode before any toggle.
const DefaultMode = ModeCounty

// ParseMode accepts "state" or "county" in any case.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeState:
		return ModeState, true
	case ModeCounty:
		return ModeCounty, true
	}
	return "", false
}

// Circles returns the circle list m exposes.
func (m Mode) Circles(snap *analysis.Snapshot) []analysis.GeoCircle {
	if snap == nil {
		return nil
	}
	if m == ModeState {
		return snap.StateCircles
	}
	return snap.CountyCircles
}
