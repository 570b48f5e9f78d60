package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"reviewhub/internal/adapters/observability"
	"reviewhub/internal/app"
	"reviewhub/internal/shared"
	mysqlrepo "reviewhub/internal/storage/mysql"
)

// starterTree is the category tree created on a fresh database.
var starterTree = []struct {
	Category      string
	Subcategories []string
}{
	{"Electronics", []string{"Smartphones", "Laptops"}},
	{"Food", []string{"Restaurants", "Snacks"}},
	{"Clothing", []string{"Men's Wear", "Women's Wear"}},
}

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	workers := cfg.SeedWorkers
	if workers <= 0 {
		workers = 1
	}
	log.Info().Int("workers", workers).Msg("seeder starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	if err := mysqlrepo.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	catalog := app.NewCatalogService(mysqlrepo.New(db), nil)
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for _, node := range starterTree {
		cat, err := catalog.EnsureCategory(ctx, node.Category)
		if err != nil {
			log.Fatal().Err(err).Str("category", node.Category).Msg("seed category failed")
		}

		for _, name := range node.Subcategories {
			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, 1); err != nil {
				log.Fatal().Err(err).Msg("semaphore acquire failed")
			}
			wg.Add(1)
			go func(categoryID int64, name string) {
				defer wg.Done()
				defer sem.Release(1)

				sc, err := catalog.EnsureSubcategory(ctx, categoryID, name)
				if err != nil {
					log.Warn().Err(err).Str("subcategory", name).Msg("seed subcategory failed")
					return
				}
				log.Info().Str("subcategory", sc.Name).Str("slug", sc.Slug).Msg("subcategory ok")
			}(cat.ID, name)
		}
	}
	wg.Wait()

	n, err := catalog.BackfillSlugs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("slug backfill failed")
	}
	log.Info().Int("companies", n).Msg("seeding completed")
}
