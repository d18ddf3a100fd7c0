package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

// FilterSpec describes a report filter. Within a dimension the selected
// values are OR-ed; across dimensions they are AND-ed. An empty slice
// means the dimension is unrestricted. Zero From/To means the date range
// is open on that side.
type FilterSpec struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`

	Continents []string `json:"continents,omitempty"`
	Regions    []string `json:"regions,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	Publishers []string `json:"publishers,omitempty"`
	AgeGroups  []string `json:"ageGroups,omitempty"`
	ChurnRisks []string `json:"churnRisks,omitempty"`

	// Expression is an optional CEL predicate applied per transaction,
	// e.g. `net_revenue > 50.0 && discount_pct == 0.0`.
	Expression string `json:"expression,omitempty"`
}

// IsZero reports whether the spec restricts nothing.
func (f FilterSpec) IsZero() bool {
	return f.From.IsZero() && f.To.IsZero() &&
		len(f.Continents) == 0 && len(f.Regions) == 0 &&
		len(f.Genres) == 0 && len(f.Publishers) == 0 &&
		len(f.AgeGroups) == 0 && len(f.ChurnRisks) == 0 &&
		f.Expression == ""
}

// Fingerprint returns a stable hex digest of the spec. Value order and
// case do not affect the result, so equivalent filters share cache keys.
func (f FilterSpec) Fingerprint() string {
	h := sha256.New()
	writeTime := func(t time.Time) {
		if t.IsZero() {
			h.Write([]byte("-"))
		} else {
			h.Write([]byte(t.UTC().Format(time.RFC3339)))
		}
		h.Write([]byte{0})
	}
	writeSet := func(vals []string) {
		norm := make([]string, len(vals))
		for i, v := range vals {
			norm[i] = strings.ToLower(strings.TrimSpace(v))
		}
		sort.Strings(norm)
		for _, v := range norm {
			h.Write([]byte(v))
			h.Write([]byte{1})
		}
		h.Write([]byte{0})
	}
	writeTime(f.From)
	writeTime(f.To)
	writeSet(f.Continents)
	writeSet(f.Regions)
	writeSet(f.Genres)
	writeSet(f.Publishers)
	writeSet(f.AgeGroups)
	writeSet(f.ChurnRisks)
	h.Write([]byte(f.Expression))
	return hex.EncodeToString(h.Sum(nil))
}
