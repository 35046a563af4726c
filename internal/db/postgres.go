package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shelfscout/shelfscout-backend/internal/logger"
	"github.com/shelfscout/shelfscout-backend/internal/types"
	"github.com/shelfscout/shelfscout-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "shelfscout", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.CatalogRecord{},
		&types.ListingRecord{},
		&types.PriceHistorySample{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	return s.ensureNormalizationFunctions()
}

// ensureNormalizationFunctions installs the two query-time helpers the
// repos rely on. They must stay behaviorally identical to the pure Go
// versions in internal/normalize.
func (s *PostgresService) ensureNormalizationFunctions() error {
	s.log.Info("Installing code normalization functions...")
	if err := s.db.Exec(`
		CREATE OR REPLACE FUNCTION normalize_code(text) RETURNS text AS $$
			SELECT upper(regexp_replace(coalesce($1, ''), '[^a-zA-Z0-9]', '', 'g'))
		$$ LANGUAGE sql IMMUTABLE;
	`).Error; err != nil {
		return fmt.Errorf("failed to create normalize_code: %w", err)
	}
	if err := s.db.Exec(`
		CREATE OR REPLACE FUNCTION normalize_upc(text) RETURNS text AS $$
			SELECT ltrim(regexp_replace(coalesce($1, ''), '[^0-9]', '', 'g'), '0')
		$$ LANGUAGE sql IMMUTABLE;
	`).Error; err != nil {
		return fmt.Errorf("failed to create normalize_upc: %w", err)
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
