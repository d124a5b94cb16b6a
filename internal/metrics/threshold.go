package metrics

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrNoMatch      = errors.New("no threshold range matches value")
	ErrInvalidTable = errors.New("invalid threshold table")
)

// Range is a half-open interval [Low, High). A nil bound is unbounded.
type Range struct {
	Low   *float64 `json:"low"   yaml:"low"`
	High  *float64 `json:"high"  yaml:"high"`
	Label string   `json:"label" yaml:"label"`
	Color string   `json:"color" yaml:"color"`
}

// Contains reports whether v falls inside the range.
func (r Range) Contains(v float64) bool {
	return (r.Low == nil || v >= *r.Low) && (r.High == nil || v < *r.High)
}

// Text renders the bounds for display, e.g. "18.5 to under 25".
func (r Range) Text() string {
	switch {
	case r.Low == nil && r.High == nil:
		return "any value"
	case r.Low == nil:
		return "under " + formatBound(*r.High)
	case r.High == nil:
		return formatBound(*r.Low) + " and over"
	}
	return formatBound(*r.Low) + " to under " + formatBound(*r.High)
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Table is an ordered list of ranges covering the real line.
type Table []Range

// Classification is the result of matching a value against a Table.
type Classification struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Classify returns the first range in t containing value. ErrNoMatch means
// the table has a gap, which Validate rejects up front.
func Classify(value float64, t Table) (Classification, error) {
	for i, r := range t {
		if r.Contains(value) {
			return Classification{Index: i, Label: r.Label, Color: r.Color}, nil
		}
	}
	return Classification{Index: -1}, fmt.Errorf("%w: %g", ErrNoMatch, value)
}

// Validate checks that t is non-empty, open-ended at both ends and that every
// range starts where the previous one ends.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no ranges", ErrInvalidTable)
	}
	if t[0].Low != nil {
		return fmt.Errorf("%w: first range must have no lower bound", ErrInvalidTable)
	}
	if t[len(t)-1].High != nil {
		return fmt.Errorf("%w: last range must have no upper bound", ErrInvalidTable)
	}
	for i, r := range t {
		if r.Label == "" {
			return fmt.Errorf("%w: range %d has no label", ErrInvalidTable, i)
		}
		for _, b := range []*float64{r.Low, r.High} {
			if b != nil && !finite(*b) {
				return fmt.Errorf("%w: range %d has a non-finite bound", ErrInvalidTable, i)
			}
		}
		if r.Low != nil && r.High != nil && *r.Low >= *r.High {
			return fmt.Errorf("%w: range %d is empty", ErrInvalidTable, i)
		}
		if i == 0 {
			continue
		}
		prev := t[i-1]
		if prev.High == nil || r.Low == nil || *prev.High != *r.Low {
			return fmt.Errorf("%w: ranges %d and %d are not contiguous", ErrInvalidTable, i-1, i)
		}
	}
	return nil
}

// DeriveTable returns a copy of base with offset added to every bound.
// Labels and colours are kept.
func DeriveTable(base Table, offset float64) Table {
	out := make(Table, len(base))
	for i, r := range base {
		out[i] = Range{
			Low:   shift(r.Low, offset),
			High:  shift(r.High, offset),
			Label: r.Label,
			Color: r.Color,
		}
	}
	return out
}

func shift(b *float64, offset float64) *float64 {
	if b == nil {
		return nil
	}
	v := *b + offset
	return &v
}

// FormatDiff renders a mass difference as "+1.23 kg" or "-1.23 kg".
func FormatDiff(kg float64) string {
	sign := ""
	if kg > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f kg", sign, kg)
}
