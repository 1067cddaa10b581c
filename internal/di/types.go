// Package di provides dependency injection type definitions.
package di

import (
	"github.com/aristath/refportfolio/internal/database"
	"github.com/aristath/refportfolio/internal/modules/optimization"
	"github.com/aristath/refportfolio/internal/modules/portfolio"
	"github.com/aristath/refportfolio/internal/modules/risk"
	"github.com/aristath/refportfolio/internal/records"
	"github.com/aristath/refportfolio/internal/scheduler"
)

// Container holds all dependencies for the application.
// It is created by Wire() and handed to the CLI commands.
type Container struct {
	// Databases
	DB *database.DB

	// Repositories
	OutputRepo     *records.OutputRepository
	SubmissionRepo *records.SubmissionRepository
	StaffRepo      *records.StaffRepository

	// Engine
	RiskCalculator    *risk.Calculator
	MetricsCalculator *portfolio.Calculator
	Optimizer         *optimization.Optimizer
}

// Close releases the database connection
func (c *Container) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

// JobInstances holds the maintenance jobs
type JobInstances struct {
	RiskRecalc    *scheduler.RiskRecalcJob
	CheckDatabase *scheduler.CheckDatabaseJob
}
