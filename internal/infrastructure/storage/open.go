// Package storage abre el backend del Record Store elegido en la configuración.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/jhoicas/cafetal-api/internal/infrastructure/embedded"
	"github.com/jhoicas/cafetal-api/internal/infrastructure/postgres"
	"github.com/jhoicas/cafetal-api/pkg/config"
	"github.com/jhoicas/cafetal-api/pkg/logger"
)

// Open devuelve el store según STORE_DRIVER y la función que lo cierra.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		log.Warn().Msg("store en memoria: los datos se pierden al reiniciar")
		return embedded.NewMemoryStore(), func() {}, nil

	case config.StoreSQLite:
		s, err := embedded.OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", s.Path()).Msg("store SQLite abierto")
		return s, func() {
			if err := s.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar SQLite")
			}
		}, nil

	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		s := postgres.NewStore(pool)
		if cfg.DB.Migrate {
			if err := s.Migrate(ctx); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("migrar esquema: %w", err)
			}
			log.Info().Msg("esquema PostgreSQL aplicado")
		}
		return s, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("STORE_DRIVER desconocido %q", cfg.Store.Driver)
	}
}
