// Package wire provides dependency injection for the elemcat application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"io"
	"log"
	"os"
	"sync"

	cliadapter "github.com/example/elemcat/internal/adapters/cli"
	"github.com/example/elemcat/internal/adapters/sqlite"
	"github.com/example/elemcat/internal/app"
	"github.com/example/elemcat/internal/config"
	"github.com/example/elemcat/internal/core/template"
	"github.com/example/elemcat/internal/db"
	"github.com/example/elemcat/internal/importer"
	"github.com/example/elemcat/internal/logging"
	"github.com/example/elemcat/internal/ports/primary"
)

var (
	catalogService  primary.CatalogService
	templateService primary.TemplateService
	projectService  primary.ProjectService
	renderService   primary.RenderService
	changeLog       *sqlite.LogWriterAdapter
	logger          *logging.Logger
	database        *sql.DB
	once            sync.Once
)

// CatalogService returns the singleton CatalogService instance.
func CatalogService() primary.CatalogService {
	once.Do(initServices)
	return catalogService
}

// TemplateService returns the singleton TemplateService instance.
func TemplateService() primary.TemplateService {
	once.Do(initServices)
	return templateService
}

// ProjectService returns the singleton ProjectService instance.
func ProjectService() primary.ProjectService {
	once.Do(initServices)
	return projectService
}

// RenderService returns the singleton RenderService instance.
func RenderService() primary.RenderService {
	once.Do(initServices)
	return renderService
}

// ChangeLog returns the change log reader and writer.
func ChangeLog() *sqlite.LogWriterAdapter {
	once.Do(initServices)
	return changeLog
}

// Logger returns the application logger.
func Logger() *logging.Logger {
	once.Do(initServices)
	return logger
}

// Close flushes the logger and closes the database, if they were opened.
func Close() {
	if logger != nil {
		logger.Sync()
	}
	if database != nil {
		database.Close()
	}
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to get working directory: %v", err)
	}
	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err = logging.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath, err = config.DefaultDBPath()
		if err != nil {
			log.Fatalf("failed to resolve database path: %v", err)
		}
	}
	database, err = db.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	logger.Debug("database opened", "path", dbPath)

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	changeLog = sqlite.NewLogWriterAdapter(database)
	elementRepo := sqlite.NewElementRepository(database, changeLog)
	variableRepo := sqlite.NewVariableRepository(database)
	versionRepo := sqlite.NewVersionRepository(database)
	projectRepo := sqlite.NewProjectRepository(database)
	instanceRepo := sqlite.NewProjectElementRepository(database, changeLog)
	renderedRepo := sqlite.NewRenderedRepository(database)

	// Create services (primary ports implementation)
	policy := template.Policy{RequiredApprovals: cfg.RequiredApprovals}
	catalogService = app.NewCatalogService(elementRepo, variableRepo, logger)
	templateService = app.NewTemplateService(elementRepo, variableRepo, versionRepo, policy, logger)
	projectService = app.NewProjectService(projectRepo, instanceRepo, elementRepo, variableRepo, versionRepo, logger)
	renderService = app.NewRenderService(renderedRepo, cfg.ReconcileWorkers, logger)
}

// CatalogAdapter returns a new CatalogAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func CatalogAdapter() *cliadapter.CatalogAdapter {
	return CatalogAdapterWithOutput(os.Stdout)
}

// CatalogAdapterWithOutput returns a new CatalogAdapter writing to the given output.
func CatalogAdapterWithOutput(out io.Writer) *cliadapter.CatalogAdapter {
	once.Do(initServices)
	return cliadapter.NewCatalogAdapter(catalogService, out)
}

// TemplateAdapter returns a new TemplateAdapter writing to stdout.
func TemplateAdapter() *cliadapter.TemplateAdapter {
	return TemplateAdapterWithOutput(os.Stdout)
}

// TemplateAdapterWithOutput returns a new TemplateAdapter writing to the given output.
func TemplateAdapterWithOutput(out io.Writer) *cliadapter.TemplateAdapter {
	once.Do(initServices)
	return cliadapter.NewTemplateAdapter(templateService, out)
}

// ProjectAdapter returns a new ProjectAdapter writing to stdout.
func ProjectAdapter() *cliadapter.ProjectAdapter {
	return ProjectAdapterWithOutput(os.Stdout)
}

// ProjectAdapterWithOutput returns a new ProjectAdapter writing to the given output.
func ProjectAdapterWithOutput(out io.Writer) *cliadapter.ProjectAdapter {
	once.Do(initServices)
	return cliadapter.NewProjectAdapter(projectService, out)
}

// RenderAdapter returns a new RenderAdapter writing to stdout.
func RenderAdapter() *cliadapter.RenderAdapter {
	return RenderAdapterWithOutput(os.Stdout)
}

// RenderAdapterWithOutput returns a new RenderAdapter writing to the given output.
func RenderAdapterWithOutput(out io.Writer) *cliadapter.RenderAdapter {
	once.Do(initServices)
	return cliadapter.NewRenderAdapter(renderService, out)
}

// Importer returns a catalog importer over the singleton services.
func Importer() *importer.Importer {
	once.Do(initServices)
	return importer.New(catalogService, templateService, logger)
}
