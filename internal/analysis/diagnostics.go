package analysis

import "github.com/sirupsen/logrus"

// Diagnostics counts the rows each aggregation pass skipped or degraded.
type Diagnostics struct {
	Rows             int `json:"rows"`
	BlankCategory    int `json:"blankCategory"`
	NonNumericProfit int `json:"nonNumericProfit"`
	UnmappedZip      int `json:"unmappedZip"`
	Undated          int `json:"undated"`
	BadDate          int `json:"badDate"`
	BadQuantity      int `json:"badQuantity"`
}

type issue int

const (
	issueBlankCategory issue = iota
	issueNonNumericProfit
	issueUnmappedZip
	issueUndated
	issueBadDate
	issueBadQuantity
)

func (d *Diagnostics) note(i issue) {
	if d == nil {
		return
	}
	switch i {
	case issueBlankCategory:
		d.BlankCategory++
	case issueNonNumericProfit:
		d.NonNumericProfit++
	case issueUnmappedZip:
		d.UnmappedZip++
	case issueUndated:
		d.Undated++
	case issueBadDate:
		d.BadDate++
	case issueBadQuantity:
		d.BadQuantity++
	}
}

// Counts maps each degradation reason to its row count.
func (d Diagnostics) Counts() map[string]int {
	return map[string]int{
		"blank_category":     d.BlankCategory,
		"non_numeric_profit": d.NonNumericProfit,
		"unmapped_zip":       d.UnmappedZip,
		"undated":            d.Undated,
		"bad_date":           d.BadDate,
		"bad_quantity":       d.BadQuantity,
	}
}

// Fields renders the counters for structured logging.
func (d Diagnostics) Fields() logrus.Fields {
	f := logrus.Fields{"rows": d.Rows}
	for k, v := range d.Counts() {
		f[k] = v
	}
	return f
}
