// CLI tool to validate variant files before pointing VARIANTS_DIR at them.
// Checks every *.yaml file on its own, then the directory as a whole
// (duplicate variant names, default variant present).
// Usage: go run ./cmd/checktables [dir] (defaults to VARIANTS_DIR, then internal/metrics/variants)
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"

	"lg/bodycomp-go-api/internal/metrics"
)

func main() {
	log.SetFlags(0)
	// .env is optional; it may set VARIANTS_DIR and DEFAULT_VARIANT.
	if err := godotenv.Load(); err != nil {
		log.Printf("[main] no .env loaded: %v", err)
	}

	dir := os.Getenv("VARIANTS_DIR")
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if dir == "" {
		dir = filepath.Join("internal", "metrics", "variants")
	}
	defaultVariant := os.Getenv("DEFAULT_VARIANT")
	if defaultVariant == "" {
		defaultVariant = "standard"
	}

	failed, err := checkDir(dir, defaultVariant, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "\n%d file(s) failed validation.\n", failed)
		os.Exit(1)
	}
}

// checkDir validates each variant file in dir, writing one line per file to w.
// It returns the number of failed files; err is set when the directory
// itself is unusable.
func checkDir(dir, defaultVariant string, w io.Writer) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no variant files found in %s", dir)
	}
	sort.Strings(files)

	failed := 0
	for _, f := range files {
		name := filepath.Base(f)
		data, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintf(w, "  fail: %s: %v\n", name, err)
			failed++
			continue
		}
		v, err := metrics.ParseVariant(data)
		if err != nil {
			fmt.Fprintf(w, "  fail: %s: %v\n", name, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "  ok: %s (%s, %d sections)\n", name, v.Name, len(v.Sections))
	}
	if failed > 0 {
		return failed, nil
	}

	catalog, err := metrics.LoadCatalogDir(dir)
	if err != nil {
		return 0, err
	}
	if _, err := catalog.Variant(defaultVariant); err != nil {
		return 0, fmt.Errorf("default variant: %w", err)
	}
	fmt.Fprintf(w, "\n%d variant(s) valid: %v\n", len(files), catalog.Names())
	return 0, nil
}
