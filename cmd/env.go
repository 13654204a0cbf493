package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/DylanKirbs/BiomeClassification/internal/feature"
	"github.com/DylanKirbs/BiomeClassification/internal/raster"
	"github.com/DylanKirbs/BiomeClassification/internal/region"
	"github.com/DylanKirbs/BiomeClassification/internal/store"
)

// openCatalog opens the raster catalog and ensures its schema exists.
func openCatalog(ctx context.Context) (*raster.Catalog, error) {
	cat, err := raster.OpenCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	if err := cat.Migrate(ctx); err != nil {
		_ = cat.Close()
		return nil, err
	}
	return cat, nil
}

// openStore opens the configured run store and ensures its schema exists.
func openStore(ctx context.Context) (store.Store, error) {
	var st store.Store
	switch cfg.Store.Driver {
	case "sqlite", "":
		s, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		st = s
	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
		if err != nil {
			return nil, err
		}
		st = s
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// loadSchema resolves the feature schema from config, falling back to the
// default when no schema file is configured.
func loadSchema(path string) (feature.Schema, error) {
	if path == "" {
		path = cfg.Train.SchemaPath
	}
	if path == "" {
		return feature.DefaultSchema(), nil
	}
	return feature.LoadSchema(path)
}

// regionFilter loads an optional shapefile mask as a cell filter for a grid.
func regionFilter(path string, g *raster.Grid) (raster.CellFilter, error) {
	if path == "" {
		return nil, nil
	}
	mask, err := region.LoadShapefile(path)
	if err != nil {
		return nil, err
	}
	return mask.Filter(g), nil
}

// finishRun records the terminal state of a run, logging rather than failing
// when bookkeeping itself errors.
func finishRun(ctx context.Context, st store.Store, runID string, summary *store.RunSummary, runErr error) {
	if st == nil || runID == "" {
		return
	}
	var err error
	if runErr != nil {
		err = st.FailRun(ctx, runID, runErr.Error())
	} else {
		err = st.CompleteRun(ctx, runID, summary)
	}
	if err != nil {
		zap.L().Warn("record run outcome", zap.String("run_id", runID), zap.Error(err))
	}
}
