/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the pricing condition resolution server.
  Handles configuration, source selection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Build the selected source implementation
  3. Wire resolver, fetcher, and lookups into the pricing service
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: 8080)
  -source     Source implementation: odata | sqlite | memory (default: sqlite)
  -base-url   Remote base URL (required for -source=odata)
  -db         SQLite database path for -source=sqlite (default: pricing.db)
              Use ":memory:" for in-memory database
  -seed       Load the demo dataset at startup (sqlite source)

SOURCE SELECTION:
  The work-agreement source predates its remote counterpart; the sqlite
  and memory implementations keep the pipeline runnable without any
  remote connectivity. All implementations satisfy the same capability
  interfaces, so the pipeline code never branches on the source.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the local store, if any
  4. Exit

EXAMPLES:
  # Local demo, no remote systems
  ./server -source=sqlite -db=":memory:" -seed

  # Against the remote sources
  ./server -source=odata -base-url="https://gateway.example.com/odata"

SEE ALSO:
  - api/server.go: Router configuration
  - source/odata: Remote source implementations
  - source/sqlite: Local fixture-backed sources
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warp/pricing-engine/api"
	"github.com/warp/pricing-engine/condition"
	"github.com/warp/pricing-engine/enrich"
	"github.com/warp/pricing-engine/pricing"
	"github.com/warp/pricing-engine/source/memory"
	"github.com/warp/pricing-engine/source/odata"
	"github.com/warp/pricing-engine/source/sqlite"
	"github.com/warp/pricing-engine/workforce"
)

// sourceSet groups one implementation of every capability the pipeline
// consumes.
type sourceSet struct {
	validities condition.ValiditySource
	details    condition.DetailSource
	agreements workforce.Source
	employees  enrich.EmployeeSource
	projects   enrich.ProjectSource
	partners   enrich.BusinessPartnerSource

	seed  func(r *http.Request) error
	close func() error
}

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	sourceName := flag.String("source", "sqlite", "source implementation: odata | sqlite | memory")
	baseURL := flag.String("base-url", "", "remote base URL (odata source)")
	dbPath := flag.String("db", "pricing.db", "SQLite database path (sqlite source)")
	seed := flag.Bool("seed", false, "load the demo dataset at startup")
	flag.Parse()

	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	sources, err := buildSources(*sourceName, *baseURL, *dbPath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize sources")
	}
	if sources.close != nil {
		defer sources.close()
	}

	if *seed {
		if sources.seed == nil {
			log.Fatalf("-seed is not supported for source %q", *sourceName)
		}
		if err := sources.seed(nil); err != nil {
			log.WithError(err).Fatal("failed to seed demo data")
		}
		log.Info("demo dataset loaded")
	}

	// Wire the pipeline
	resolver := workforce.NewResolver(sources.agreements)
	service := pricing.NewService(
		resolver,
		condition.NewFetcher(sources.validities, sources.details),
		enrich.NewLookups(sources.employees, sources.projects, sources.partners),
	)

	handler := api.NewHandler(service, resolver)
	handler.Seed = sources.seed
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithFields(logrus.Fields{
			"port":   *port,
			"source": *sourceName,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}

func buildSources(name, baseURL, dbPath string) (sourceSet, error) {
	switch name {
	case "odata":
		if baseURL == "" {
			return sourceSet{}, fmt.Errorf("-base-url is required for the odata source")
		}
		remote := odata.New(baseURL)
		return sourceSet{
			validities: remote,
			details:    remote,
			agreements: remote,
			employees:  remote,
			projects:   remote,
			partners:   remote,
		}, nil

	case "sqlite":
		store, err := sqlite.New(dbPath)
		if err != nil {
			return sourceSet{}, err
		}
		return sourceSet{
			validities: store,
			details:    store,
			agreements: store,
			employees:  store,
			projects:   store,
			partners:   store,
			seed: func(r *http.Request) error {
				ctx := context.Background()
				if r != nil {
					ctx = r.Context()
				}
				return store.Seed(ctx, demoDataset())
			},
			close: store.Close,
		}, nil

	case "memory":
		mem := memory.Demo()
		return sourceSet{
			validities: mem,
			details:    mem,
			agreements: mem,
			employees:  mem,
			projects:   mem,
			partners:   mem,
		}, nil

	default:
		return sourceSet{}, fmt.Errorf("unknown source %q (want odata, sqlite, or memory)", name)
	}
}

func demoDataset() sqlite.Dataset {
	demo := memory.Demo()
	return sqlite.Dataset{
		Validities:       demo.Validities,
		Details:          demo.Details,
		Agreements:       demo.Agreements,
		Employees:        demo.Employees,
		Projects:         demo.Projects,
		BusinessPartners: demo.BusinessPartners,
	}
}
