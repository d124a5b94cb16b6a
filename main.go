package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
)

func main() {
	// Tag log lines with the app name; gin's logger already prints timestamps.
	log.SetPrefix("lg/bodycomp-go-api: ")
	log.SetFlags(0)

	// .env is optional; the environment alone is enough in production.
	if err := godotenv.Load(); err != nil {
		log.Printf("[main] no .env loaded: %v", err)
	}

	cfg := loadConfig()
	catalog, err := loadCatalog(cfg)
	if err != nil {
		log.Fatalf("[main] load variants: %v", err)
	}
	log.Printf("[main] loaded variants %v (default %q)", catalog.Names(), cfg.DefaultVariant)

	h := &Handler{catalog: catalog, defaultVariant: cfg.DefaultVariant}
	router := newRouter(h)

	fmt.Println("Starting gin app on", cfg.Addr)
	if err := router.Run(cfg.Addr); err != nil {
		log.Fatalf("[main] server stopped: %v", err)
	}
}
