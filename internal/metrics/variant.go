package metrics

import (
	"fmt"
)

// Metric names one of the computed indices.
type Metric string

const (
	MetricBMI  Metric = "bmi"
	MetricFFMI Metric = "ffmi"
	MetricFMI  Metric = "fmi"
)

// Section is the classification scheme a variant applies to one metric.
type Section struct {
	Metric     Metric
	Title      string
	Formula    string
	IdealIndex map[Gender]float64 // nil when the variant shows no ideal comparison
	Tables     map[Gender]Table
}

// Evaluation holds the rules behind the overall evaluation sentence.
// A gender missing from Muscular or HighBodyFat never gets that qualifier.
type Evaluation struct {
	Bands       Table
	Muscular    map[Gender]float64
	HighBodyFat map[Gender]float64
}

// Variant is one complete set of tables and constants. Variants are built by
// LoadCatalog and are read-only afterwards.
type Variant struct {
	Name        string
	Description string
	Sections    []Section
	Evaluation  Evaluation
}

// Section returns the section for metric, if the variant has one.
func (v *Variant) Section(metric Metric) (Section, bool) {
	for _, s := range v.Sections {
		if s.Metric == metric {
			return s, true
		}
	}
	return Section{}, false
}

// OverallEvaluation builds the summary sentence: the base label from the BMI
// band, followed by " (muscular)" and/or " (high body fat)".
func (v *Variant) OverallEvaluation(bmi, ffmi, fmi float64, g Gender) (string, error) {
	c, err := Classify(bmi, v.Evaluation.Bands)
	if err != nil {
		return "", fmt.Errorf("overall evaluation: %w", err)
	}
	s := c.Label
	if t, ok := v.Evaluation.Muscular[g]; ok && ffmi >= t {
		s += " (muscular)"
	}
	if t, ok := v.Evaluation.HighBodyFat[g]; ok && fmi >= t {
		s += " (high body fat)"
	}
	return s, nil
}

// Report is everything shown for one measurement under one variant.
type Report struct {
	Variant     string          `json:"variant"`
	Gender      Gender          `json:"gender"`
	Measurement Measurement     `json:"measurement"`
	Indices     Indices         `json:"indices"`
	Overall     string          `json:"overall"`
	Sections    []SectionResult `json:"sections"`
}

// SectionResult is one classified metric with its rendered table rows.
type SectionResult struct {
	Metric         Metric         `json:"metric"`
	Title          string         `json:"title"`
	Formula        string         `json:"formula"`
	Value          float64        `json:"value"`
	Classification Classification `json:"classification"`
	Ideal          *Ideal         `json:"ideal,omitempty"`
	Rows           []Row          `json:"rows"`
}

// Ideal compares the user's mass with the mass at the ideal index.
type Ideal struct {
	Index  float64 `json:"index"`
	MassKG float64 `json:"mass_kg"`
	DiffKG float64 `json:"diff_kg"`
	Diff   string  `json:"diff"`
}

// Row is one line of a classification table.
type Row struct {
	Range   string `json:"range"`
	Label   string `json:"label"`
	Color   string `json:"color"`
	Matched bool   `json:"matched"`
}

// Evaluate computes and classifies m for gender g.
func (v *Variant) Evaluate(m Measurement, g Gender) (Report, error) {
	if _, err := ParseGender(string(g)); err != nil {
		return Report{}, err
	}
	idx, err := Compute(m)
	if err != nil {
		return Report{}, err
	}

	overall, err := v.OverallEvaluation(idx.BMI, idx.FFMI, idx.FMI, g)
	if err != nil {
		return Report{}, err
	}

	r := Report{
		Variant:     v.Name,
		Gender:      g,
		Measurement: m,
		Indices:     idx,
		Overall:     overall,
	}
	for _, s := range v.Sections {
		res, err := s.evaluate(m, idx, g)
		if err != nil {
			return Report{}, fmt.Errorf("%s %s: %w", v.Name, s.Metric, err)
		}
		r.Sections = append(r.Sections, res)
	}
	return r, nil
}

func (s Section) evaluate(m Measurement, idx Indices, g Gender) (SectionResult, error) {
	value, mass := s.Metric.values(m, idx)
	table := s.Tables[g]
	c, err := Classify(value, table)
	if err != nil {
		return SectionResult{}, err
	}

	res := SectionResult{
		Metric:         s.Metric,
		Title:          s.Title,
		Formula:        s.Formula,
		Value:          value,
		Classification: c,
		Rows:           make([]Row, len(table)),
	}
	for i, rg := range table {
		res.Rows[i] = Row{Range: rg.Text(), Label: rg.Label, Color: rg.Color, Matched: i == c.Index}
	}
	if index, ok := s.IdealIndex[g]; ok {
		ideal := IdealMass(index, m.HeightM())
		res.Ideal = &Ideal{
			Index:  index,
			MassKG: ideal,
			DiffKG: mass - ideal,
			Diff:   FormatDiff(mass - ideal),
		}
	}
	return res, nil
}

// values returns the index for the metric and the mass it is derived from.
func (mt Metric) values(m Measurement, idx Indices) (index, mass float64) {
	switch mt {
	case MetricFFMI:
		return idx.FFMI, idx.LeanMass
	case MetricFMI:
		return idx.FMI, idx.FatMass
	}
	return idx.BMI, m.WeightKG
}
