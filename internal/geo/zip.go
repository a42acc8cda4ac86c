// Package geo holds the static lookup tables joined against order rows:
// the ZIP to county FIPS index and the state/county geometry.
package geo

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// FIPS is a numeric county code (state code * 1000 + county code).
type FIPS int

// String renders the conventional zero-padded five digit form.
func (f FIPS) String() string { return fmt.Sprintf("%05d", int(f)) }

// ZipIndex maps canonical ZIP codes to county FIPS codes. It is read-only
// after construction and safe for concurrent use. A nil index matches nothing.
type ZipIndex struct {
	byZip map[string]FIPS
}

// NewZipIndex canonicalises the keys of m. Keys that do not canonicalise are
// dropped. When several keys share a canonical form, a key already in that form
// wins, then the lexicographically smallest one.
func NewZipIndex(m map[string]FIPS) *ZipIndex {
	idx := &ZipIndex{byZip: make(map[string]FIPS, len(m))}
	from := make(map[string]string, len(m))
	for k, v := range m {
		ck, ok := CanonicalZip(k)
		if !ok {
			continue
		}
		if prev, taken := from[ck]; taken && !preferKey(k, prev, ck) {
			continue
		}
		from[ck] = k
		idx.byZip[ck] = v
	}
	return idx
}

func preferKey(k, prev, canonical string) bool {
	if (k == canonical) != (prev == canonical) {
		return k == canonical
	}
	return k < prev
}

type zipEntry struct {
	County fipsValue `json:"STCOUNTYFP"`
}

// fipsValue accepts 1001 as well as "01001".
type fipsValue struct {
	v  FIPS
	ok bool
}

func (f *fipsValue) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid STCOUNTYFP %s: %w", string(b), err)
	}
	f.v, f.ok = FIPS(n), true
	return nil
}

// ParseZipIndex reads the {"<zip>": {"STCOUNTYFP": <code>}} table.
func ParseZipIndex(r io.Reader) (*ZipIndex, error) {
	var raw map[string]zipEntry
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode zip index: %w", err)
	}
	m := make(map[string]FIPS, len(raw))
	for zip, e := range raw {
		if e.County.ok {
			m[zip] = e.County.v
		}
	}
	return NewZipIndex(m), nil
}

// LoadZipIndex reads a ZIP index file.
func LoadZipIndex(path string) (*ZipIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open zip index: %w", err)
	}
	defer f.Close()
	return ParseZipIndex(f)
}

// Lookup canonicalises postal and returns its county.
func (z *ZipIndex) Lookup(postal string) (FIPS, bool) {
	if z == nil {
		return 0, false
	}
	key, ok := CanonicalZip(postal)
	if !ok {
		return 0, false
	}
	f, ok := z.byZip[key]
	return f, ok
}

// Len is the number of mapped ZIP codes.
func (z *ZipIndex) Len() int {
	if z == nil {
		return 0
	}
	return len(z.byZip)
}

// CanonicalZip reduces a postal code to the decimal integer it starts with:
// leading whitespace is skipped, an optional sign is honoured, the leading
// digit run is read and leading zeros are dropped. "02134" and " 2134-0001"
// both yield "2134". ok is false when no digit follows the optional sign.
func CanonicalZip(s string) (string, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return "", false
	}
	digits := strings.TrimLeft(s[:end], "0")
	if digits == "" {
		return "0", true
	}
	if neg {
		return "-" + digits, true
	}
	return digits, true
}
