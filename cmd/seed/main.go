// Command seed loads a JSON catalogue dump into the document store. It is a
// one-shot tool for bootstrapping environments and local development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"scentbase-backend/application/ports"
	"scentbase-backend/infrastructure/config"
	"scentbase-backend/infrastructure/di"
)

// seedFile maps collection names to documents keyed by ID
type seedFile map[string]map[string]map[string]interface{}

func main() {
	path := flag.String("file", "seed.json", "path to the seed JSON file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	logger := container.Logger

	data, err := os.ReadFile(*path)
	if err != nil {
		logger.Fatal("Failed to read seed file", zap.String("path", *path), zap.Error(err))
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		logger.Fatal("Failed to parse seed file", zap.Error(err))
	}

	total := 0
	for collection, docs := range seed {
		if err := seedCollection(ctx, container.Store, collection, docs); err != nil {
			logger.Fatal("Seeding failed",
				zap.String("collection", collection),
				zap.Error(err),
			)
		}
		logger.Info("Collection seeded",
			zap.String("collection", collection),
			zap.Int("documents", len(docs)),
		)
		total += len(docs)
	}

	logger.Info("Seed complete",
		zap.Int("collections", len(seed)),
		zap.Int("documents", total),
	)
}

func seedCollection(ctx context.Context, store ports.DocumentStore, collection string, docs map[string]map[string]interface{}) error {
	for id, fields := range docs {
		if err := store.Set(ctx, collection, id, fields); err != nil {
			return err
		}
	}
	return nil
}
