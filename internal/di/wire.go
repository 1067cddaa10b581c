package di

import (
	"fmt"

	"github.com/aristath/refportfolio/internal/config"
	"github.com/aristath/refportfolio/internal/database"
	"github.com/aristath/refportfolio/internal/modules/optimization"
	"github.com/aristath/refportfolio/internal/modules/portfolio"
	"github.com/aristath/refportfolio/internal/modules/risk"
	"github.com/aristath/refportfolio/internal/records"
	"github.com/aristath/refportfolio/pkg/logger"
	"github.com/rs/zerolog"
)

// Wire initializes all dependencies and returns a fully configured container
// Order of operations:
// 1. Initialize the database and apply the schema
// 2. Initialize repositories
// 3. Initialize the scoring engine
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container, err := InitializeDatabase(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	InitializeRepositories(container, log)
	InitializeEngine(container, cfg, log)

	diLog := logger.Component(log, "di")
	diLog.Debug().
		Str("db", container.DB.Path()).
		Msg("Dependency injection wiring completed successfully")

	return container, nil
}

// InitializeDatabase opens the record store and applies the schema
func InitializeDatabase(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}

	db, err := database.New(database.Config{
		Path: cfg.DBPath(),
		Name: "refportfolio",
	})
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug().Str("path", db.Path()).Msg("Database initialized")
	return &Container{DB: db}, nil
}

// InitializeRepositories creates the repositories over the container's database
func InitializeRepositories(container *Container, log zerolog.Logger) {
	conn := container.DB.Conn()
	container.OutputRepo = records.NewOutputRepository(conn, log)
	container.SubmissionRepo = records.NewSubmissionRepository(conn, log)
	container.StaffRepo = records.NewStaffRepository(conn, log)
}

// InitializeEngine creates the calculators and the optimizer. The staff
// roster answers the demographic aggregates.
func InitializeEngine(container *Container, cfg *config.Config, log zerolog.Logger) {
	container.RiskCalculator = risk.NewCalculator(log)
	container.RiskCalculator.SetAutoTimeline(cfg.AutoTimeline)

	container.MetricsCalculator = portfolio.NewCalculator(container.StaffRepo, log)

	container.Optimizer = optimization.NewOptimizer(container.MetricsCalculator, log)
	container.Optimizer.SetParallelism(cfg.Parallelism)
}
