package main

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/artifact"
	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "lakehouse/runs.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.MaxConns, cfg.Store.MinConns)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initArtifacts() artifact.Store {
	return artifact.NewLocal(cfg.Artifact.Root, cfg.Artifact.SchemaVersion)
}

// parseRef parses a layer-qualified artifact name, e.g. "silver.admissions".
func parseRef(s string) (artifact.Ref, error) {
	layer, name, ok := strings.Cut(s, ".")
	if !ok || layer == "" || name == "" {
		return artifact.Ref{}, eris.Errorf("invalid artifact ref %q, expected layer.name", s)
	}
	return artifact.Ref{Layer: layer, Name: name}, nil
}
