package metrics

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var ErrUnknownVariant = errors.New("unknown variant")

//go:embed variants/*.yaml
var embeddedVariants embed.FS

/* ─── YAML file shape ────────────────────────────────────────────────── */

// variantFile is the on-disk shape of one variant. Tables are either shared
// (bands) or per gender; a female table may be derived from the male one by
// a constant offset.
type variantFile struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Sections    []sectionFile  `yaml:"sections"`
	Evaluation  evaluationFile `yaml:"evaluation"`
}

type sectionFile struct {
	Metric       Metric             `yaml:"metric"`
	Title        string             `yaml:"title"`
	Formula      string             `yaml:"formula"`
	IdealIndex   map[Gender]float64 `yaml:"ideal_index"`
	Bands        Table              `yaml:"bands"`
	MaleBands    Table              `yaml:"male_bands"`
	FemaleBands  Table              `yaml:"female_bands"`
	FemaleOffset *float64           `yaml:"female_offset"`
}

type evaluationFile struct {
	Bands       Table              `yaml:"bands"`
	Muscular    map[Gender]float64 `yaml:"muscular"`
	HighBodyFat map[Gender]float64 `yaml:"high_body_fat"`
}

/* ─── Parsing ────────────────────────────────────────────────────────── */

// ParseVariant decodes and validates one variant file. Unknown keys are rejected.
func ParseVariant(data []byte) (*Variant, error) {
	var vf variantFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&vf); err != nil {
		return nil, fmt.Errorf("decode variant: %w", err)
	}
	if vf.Name == "" {
		return nil, fmt.Errorf("%w: variant has no name", ErrInvalidTable)
	}

	v := &Variant{Name: vf.Name, Description: vf.Description}
	seen := map[Metric]bool{}
	for _, sf := range vf.Sections {
		if seen[sf.Metric] {
			return nil, fmt.Errorf("%s: duplicate section %q", vf.Name, sf.Metric)
		}
		seen[sf.Metric] = true
		s, err := sf.resolve()
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", vf.Name, sf.Metric, err)
		}
		v.Sections = append(v.Sections, s)
	}
	if !seen[MetricBMI] || !seen[MetricFFMI] {
		return nil, fmt.Errorf("%w: %s must define bmi and ffmi sections", ErrInvalidTable, vf.Name)
	}

	if err := vf.Evaluation.Bands.Validate(); err != nil {
		return nil, fmt.Errorf("%s evaluation: %w", vf.Name, err)
	}
	for _, m := range []map[Gender]float64{vf.Evaluation.Muscular, vf.Evaluation.HighBodyFat} {
		if err := checkGenderKeys(m); err != nil {
			return nil, fmt.Errorf("%s evaluation: %w", vf.Name, err)
		}
	}
	v.Evaluation = Evaluation{
		Bands:       vf.Evaluation.Bands,
		Muscular:    vf.Evaluation.Muscular,
		HighBodyFat: vf.Evaluation.HighBodyFat,
	}
	return v, nil
}

func (sf sectionFile) resolve() (Section, error) {
	switch sf.Metric {
	case MetricBMI, MetricFFMI, MetricFMI:
	default:
		return Section{}, fmt.Errorf("%w: unknown metric %q", ErrInvalidTable, sf.Metric)
	}
	if err := checkGenderKeys(sf.IdealIndex); err != nil {
		return Section{}, err
	}

	var male, female Table
	switch {
	case len(sf.Bands) > 0:
		if len(sf.MaleBands) > 0 || len(sf.FemaleBands) > 0 || sf.FemaleOffset != nil {
			return Section{}, fmt.Errorf("%w: bands cannot be combined with per-gender bands", ErrInvalidTable)
		}
		male, female = sf.Bands, sf.Bands
	case len(sf.MaleBands) > 0:
		male = sf.MaleBands
		switch {
		case len(sf.FemaleBands) > 0 && sf.FemaleOffset != nil:
			return Section{}, fmt.Errorf("%w: female_bands and female_offset are exclusive", ErrInvalidTable)
		case len(sf.FemaleBands) > 0:
			female = sf.FemaleBands
		case sf.FemaleOffset != nil:
			female = DeriveTable(male, *sf.FemaleOffset)
		default:
			return Section{}, fmt.Errorf("%w: no female table", ErrInvalidTable)
		}
	default:
		return Section{}, fmt.Errorf("%w: no bands", ErrInvalidTable)
	}

	for g, t := range map[Gender]Table{Male: male, Female: female} {
		if err := t.Validate(); err != nil {
			return Section{}, fmt.Errorf("%s table: %w", g, err)
		}
	}

	return Section{
		Metric:     sf.Metric,
		Title:      sf.Title,
		Formula:    sf.Formula,
		IdealIndex: sf.IdealIndex,
		Tables:     map[Gender]Table{Male: male, Female: female},
	}, nil
}

func checkGenderKeys(m map[Gender]float64) error {
	for g := range m {
		if _, err := ParseGender(string(g)); err != nil {
			return err
		}
	}
	return nil
}

/* ─── Catalog ────────────────────────────────────────────────────────── */

// Catalog is the set of loaded variants, keyed by name. Safe for concurrent
// reads once loaded.
type Catalog struct {
	variants map[string]*Variant
	names    []string
}

// DefaultCatalog loads the variants compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	sub, err := fs.Sub(embeddedVariants, "variants")
	if err != nil {
		return nil, err
	}
	return LoadCatalog(sub)
}

// LoadCatalogDir loads every *.yaml file in dir.
func LoadCatalogDir(dir string) (*Catalog, error) {
	return LoadCatalog(os.DirFS(dir))
}

// LoadCatalog parses every *.yaml file at the root of fsys, in name order.
func LoadCatalog(fsys fs.FS) (*Catalog, error) {
	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no variant files found", ErrInvalidTable)
	}
	sort.Strings(files)

	c := &Catalog{variants: make(map[string]*Variant)}
	for _, f := range files {
		data, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		v, err := ParseVariant(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		if _, dup := c.variants[v.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate variant name %q", f, v.Name)
		}
		c.variants[v.Name] = v
		c.names = append(c.names, v.Name)
	}
	sort.Strings(c.names)
	return c, nil
}

// Variant looks up a variant by name.
func (c *Catalog) Variant(name string) (*Variant, error) {
	v, ok := c.variants[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownVariant, name)
	}
	return v, nil
}

// Names returns the variant names in sorted order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}
