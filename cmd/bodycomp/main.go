// CLI tool to print a body-composition report in the terminal.
// Prompts for every value not passed as a flag.
// Usage: go run ./cmd/bodycomp [-gender male] [-height 170] [-weight 70] [-bodyfat 20] [-variant standard]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/joho/godotenv"

	"lg/bodycomp-go-api/internal/metrics"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	formulaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
)

// inputs holds the raw flag or prompt values before parsing.
type inputs struct {
	gender, height, weight, bodyFat, variant string
}

func main() {
	log.SetFlags(0)
	// .env is optional; it may set VARIANTS_DIR and DEFAULT_VARIANT.
	if err := godotenv.Load(); err != nil {
		log.Printf("[main] no .env loaded: %v", err)
	}

	var in inputs
	flag.StringVar(&in.gender, "gender", "", "male or female")
	flag.StringVar(&in.height, "height", "", "height in cm")
	flag.StringVar(&in.weight, "weight", "", "weight in kg")
	flag.StringVar(&in.bodyFat, "bodyfat", "", "body fat percentage (0-100)")
	flag.StringVar(&in.variant, "variant", defaultVariant(), "classification variant (default from DEFAULT_VARIANT)")
	flag.Parse()

	catalog, err := loadCatalog(os.Getenv("VARIANTS_DIR"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading variants: %v\n", err)
		os.Exit(1)
	}

	in = promptMissing(bufio.NewReader(os.Stdin), os.Stdout, in)

	report, err := evaluate(catalog, in)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
	fmt.Println(renderReport(report))
}

// defaultVariant returns DEFAULT_VARIANT, falling back to "standard" like the server.
func defaultVariant() string {
	if v := os.Getenv("DEFAULT_VARIANT"); v != "" {
		return v
	}
	return "standard"
}

func loadCatalog(dir string) (*metrics.Catalog, error) {
	if dir != "" {
		return metrics.LoadCatalogDir(dir)
	}
	return metrics.DefaultCatalog()
}

// promptMissing asks for each empty field in turn.
func promptMissing(r *bufio.Reader, w io.Writer, in inputs) inputs {
	ask := func(label string, v *string) {
		if *v != "" {
			return
		}
		fmt.Fprintf(w, "%s: ", label)
		s, _ := r.ReadString('\n')
		*v = strings.TrimSpace(s)
	}
	ask("Gender (male/female)", &in.gender)
	ask("Height (cm)", &in.height)
	ask("Weight (kg)", &in.weight)
	ask("Body fat (%)", &in.bodyFat)
	return in
}

// evaluate parses the raw inputs and runs them through the named variant.
func evaluate(catalog *metrics.Catalog, in inputs) (metrics.Report, error) {
	v, err := catalog.Variant(in.variant)
	if err != nil {
		return metrics.Report{}, err
	}
	g, err := metrics.ParseGender(strings.ToLower(in.gender))
	if err != nil {
		return metrics.Report{}, err
	}

	var m metrics.Measurement
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"height", in.height, &m.HeightCM},
		{"weight", in.weight, &m.WeightKG},
		{"body fat", in.bodyFat, &m.BodyFatPct},
	}
	for _, f := range fields {
		n, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return metrics.Report{}, fmt.Errorf("invalid %s %q: expected a number", f.name, f.raw)
		}
		*f.dst = n
	}
	return v.Evaluate(m, g)
}

// renderReport lays out the overall evaluation and one table per section,
// with the matched row drawn in its band colour.
func renderReport(r metrics.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", titleStyle.Render("Overall: your build is "+r.Overall+"."))

	for _, s := range r.Sections {
		b.WriteString(titleStyle.Render(s.Title) + "\n")
		b.WriteString(formulaStyle.Render(s.Formula) + "\n")

		headers := []string{"Range", "Classification"}
		if s.Ideal != nil {
			headers = append(headers, "Ideal mass", "Compared to ideal")
		}
		headers = append(headers, "Value")

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(borderStyle).
			StyleFunc(func(row, col int) lipgloss.Style { return cellStyle }).
			Headers(headers...)

		for _, row := range s.Rows {
			cells := []string{row.Range, row.Label}
			if s.Ideal != nil {
				if row.Matched {
					cells = append(cells, fmt.Sprintf("%.2f kg (ideal index %.2f)", s.Ideal.MassKG, s.Ideal.Index), s.Ideal.Diff)
				} else {
					cells = append(cells, "", "")
				}
			}
			if row.Matched {
				cells = append(cells, fmt.Sprintf("%.2f", s.Value))
				hl := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(row.Color))
				for i := range cells {
					cells[i] = hl.Render(cells[i])
				}
			} else {
				cells = append(cells, "")
			}
			t.Row(cells...)
		}
		b.WriteString(t.Render() + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
