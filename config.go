package main

import (
	"os"

	"lg/bodycomp-go-api/internal/metrics"
)

// config is read from the environment (optionally populated from .env).
type config struct {
	Addr           string // ADDR, listen address
	VariantsDir    string // VARIANTS_DIR, replaces the embedded variant files when set
	DefaultVariant string // DEFAULT_VARIANT, used when a request names none
}

func loadConfig() config {
	cfg := config{
		Addr:           os.Getenv("ADDR"),
		VariantsDir:    os.Getenv("VARIANTS_DIR"),
		DefaultVariant: os.Getenv("DEFAULT_VARIANT"),
	}
	if cfg.Addr == "" {
		cfg.Addr = "localhost:3000"
	}
	if cfg.DefaultVariant == "" {
		cfg.DefaultVariant = "standard"
	}
	return cfg
}

// loadCatalog loads the variant files named by cfg and checks that the
// default variant exists.
func loadCatalog(cfg config) (*metrics.Catalog, error) {
	var (
		catalog *metrics.Catalog
		err     error
	)
	if cfg.VariantsDir != "" {
		catalog, err = metrics.LoadCatalogDir(cfg.VariantsDir)
	} else {
		catalog, err = metrics.DefaultCatalog()
	}
	if err != nil {
		return nil, err
	}
	if _, err := catalog.Variant(cfg.DefaultVariant); err != nil {
		return nil, err
	}
	return catalog, nil
}
