package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"
)

func loadDefault(t *testing.T) *Catalog {
	t.Helper()
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	return c
}

func mustVariant(t *testing.T, c *Catalog, name string) *Variant {
	t.Helper()
	v, err := c.Variant(name)
	if err != nil {
		t.Fatalf("Variant(%q): %v", name, err)
	}
	return v
}

func TestDefaultCatalog_Names(t *testing.T) {
	c := loadDefault(t)
	want := []string{"athletic", "compact", "standard"}
	if got := c.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if _, err := c.Variant("nope"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("Variant(nope) error = %v, want ErrUnknownVariant", err)
	}
}

// shippedTables returns every table in the embedded catalog keyed by a
// readable name.
func shippedTables(t *testing.T) map[string]Table {
	t.Helper()
	c := loadDefault(t)
	out := map[string]Table{}
	for _, name := range c.Names() {
		v := mustVariant(t, c, name)
		out[name+"/evaluation"] = v.Evaluation.Bands
		for _, s := range v.Sections {
			for g, tbl := range s.Tables {
				out[name+"/"+string(s.Metric)+"/"+string(g)] = tbl
			}
		}
	}
	return out
}

func TestShippedTables_Contiguous(t *testing.T) {
	for name, tbl := range shippedTables(t) {
		for i := 0; i+1 < len(tbl); i++ {
			if tbl[i].High == nil || tbl[i+1].Low == nil || *tbl[i].High != *tbl[i+1].Low {
				t.Errorf("%s: ranges %d and %d are not contiguous", name, i, i+1)
			}
		}
		if tbl[0].Low != nil || tbl[len(tbl)-1].High != nil {
			t.Errorf("%s: table is not open-ended", name)
		}
	}
}

// TestShippedTables_ClassifyTotal sweeps a wide range of values and checks
// that exactly one range matches and that its bounds hold the value.
func TestShippedTables_ClassifyTotal(t *testing.T) {
	for name, tbl := range shippedTables(t) {
		for v := -20.0; v <= 80; v += 0.05 {
			c, err := Classify(v, tbl)
			if err != nil {
				t.Fatalf("%s: Classify(%v): %v", name, v, err)
			}
			matches := 0
			for _, r := range tbl {
				if r.Contains(v) {
					matches++
				}
			}
			if matches != 1 {
				t.Fatalf("%s: %d ranges contain %v, want 1", name, matches, v)
			}
			r := tbl[c.Index]
			if (r.Low != nil && v < *r.Low) || (r.High != nil && v >= *r.High) {
				t.Fatalf("%s: %v classified into %q outside its bounds", name, v, r.Label)
			}
		}
	}
}

func TestAthletic_FemaleFFMIDerivedFromMale(t *testing.T) {
	v := mustVariant(t, loadDefault(t), "athletic")
	s, ok := v.Section(MetricFFMI)
	if !ok {
		t.Fatal("athletic has no ffmi section")
	}
	male, female := s.Tables[Male], s.Tables[Female]
	if len(male) != 9 || len(female) != 9 {
		t.Fatalf("expected 9 bands per gender, got male=%d female=%d", len(male), len(female))
	}
	for i := range male {
		if female[i].Label != male[i].Label {
			t.Errorf("band %d: label %q, want %q", i, female[i].Label, male[i].Label)
		}
		checkBound(t, i, "low", male[i].Low, female[i].Low)
		checkBound(t, i, "high", male[i].High, female[i].High)
	}
}

func TestStandard_Tables(t *testing.T) {
	v := mustVariant(t, loadDefault(t), "standard")

	cases := []struct {
		metric Metric
		g      Gender
		bounds []float64
	}{
		{MetricBMI, Male, []float64{18.5, 25, 30, 35, 40}},
		{MetricBMI, Female, []float64{18.5, 25, 30, 35, 40}},
		{MetricFFMI, Male, []float64{17, 20, 23, 26}},
		{MetricFFMI, Female, []float64{15, 18, 21, 24}},
		{MetricFMI, Male, []float64{3, 6, 9, 12}},
		{MetricFMI, Female, []float64{8, 11, 14, 17}},
	}
	for _, tc := range cases {
		s, ok := v.Section(tc.metric)
		if !ok {
			t.Fatalf("standard has no %s section", tc.metric)
		}
		var got []float64
		for _, r := range s.Tables[tc.g][1:] {
			got = append(got, *r.Low)
		}
		if !reflect.DeepEqual(got, tc.bounds) {
			t.Errorf("%s/%s bounds = %v, want %v", tc.metric, tc.g, got, tc.bounds)
		}
	}
}

func TestVariantsWithoutFMI(t *testing.T) {
	c := loadDefault(t)
	for _, name := range []string{"athletic", "compact"} {
		if _, ok := mustVariant(t, c, name).Section(MetricFMI); ok {
			t.Errorf("%s should not have an fmi section", name)
		}
	}
}

const minimalVariant = `
name: tiny
sections:
  - metric: bmi
    bands:
      - {high: 25, label: ok}
      - {low: 25, label: high}
  - metric: ffmi
    male_bands:
      - {high: 20, label: ok}
      - {low: 20, label: high}
    female_offset: -2
evaluation:
  bands:
    - {high: 25, label: Fine}
    - {low: 25, label: Heavy}
`

func TestParseVariant_Minimal(t *testing.T) {
	v, err := ParseVariant([]byte(minimalVariant))
	if err != nil {
		t.Fatalf("ParseVariant: %v", err)
	}
	s, _ := v.Section(MetricFFMI)
	if got := *s.Tables[Female][0].High; got != 18 {
		t.Errorf("derived female bound = %v, want 18", got)
	}
	if v.Evaluation.Muscular != nil {
		t.Errorf("expected no muscular thresholds, got %v", v.Evaluation.Muscular)
	}
}

func TestParseVariant_Errors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(string) string
		wantErr error
	}{
		{"unknown key", func(s string) string {
			return strings.Replace(s, "name: tiny", "name: tiny\ncolour: red", 1)
		}, nil},
		{"no name", func(s string) string {
			return strings.Replace(s, "name: tiny", "", 1)
		}, ErrInvalidTable},
		{"gap in bmi", func(s string) string {
			return strings.Replace(s, "{low: 25, label: high}", "{low: 26, label: high}", 1)
		}, ErrInvalidTable},
		{"missing female table", func(s string) string {
			return strings.Replace(s, "    female_offset: -2\n", "", 1)
		}, ErrInvalidTable},
		{"female bands and offset", func(s string) string {
			return strings.Replace(s, "    female_offset: -2\n",
				"    female_offset: -2\n    female_bands:\n      - {label: any}\n", 1)
		}, ErrInvalidTable},
		{"unknown metric", func(s string) string {
			return strings.Replace(s, "metric: ffmi", "metric: whr", 1)
		}, ErrInvalidTable},
		{"bad gender key", func(s string) string {
			return strings.Replace(s, "evaluation:\n", "evaluation:\n  muscular: {other: 20}\n", 1)
		}, ErrInvalidGender},
		{"duplicate section", func(s string) string {
			return strings.Replace(s, "metric: ffmi", "metric: bmi", 1)
		}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseVariant([]byte(tc.mutate(minimalVariant)))
			if err == nil {
				t.Fatal("expected an error, got nil")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestLoadCatalog_Errors(t *testing.T) {
	if _, err := LoadCatalog(fstest.MapFS{}); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("empty fs: error = %v, want ErrInvalidTable", err)
	}

	dup := fstest.MapFS{
		"a.yaml": {Data: []byte(minimalVariant)},
		"b.yaml": {Data: []byte(minimalVariant)},
	}
	if _, err := LoadCatalog(dup); err == nil || !strings.Contains(err.Error(), "duplicate variant") {
		t.Errorf("duplicate names: error = %v", err)
	}
}

func TestLoadCatalogDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tiny.yaml"), []byte(minimalVariant), 0o644); err != nil {
		t.Fatal(err)
	}
	// non-yaml files are ignored
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCatalogDir(dir)
	if err != nil {
		t.Fatalf("LoadCatalogDir: %v", err)
	}
	if got := c.Names(); !reflect.DeepEqual(got, []string{"tiny"}) {
		t.Errorf("Names() = %v, want [tiny]", got)
	}
}
