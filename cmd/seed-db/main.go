// Command seed-db loads product definitions from a JSON file into the
// SQLite catalog. Products already present (matched by name) are skipped,
// so the command is safe to re-run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/localbasket/storefront/internal/domain/product"
	"github.com/localbasket/storefront/internal/storage/sqlite"
)

type productJSON struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Image       string          `json:"image"`
}

func main() {
	var (
		databasePath string
		productsFile string
	)

	flag.StringVar(&databasePath, "database-path", "basket.db", "path to SQLite database file")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databasePath, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databasePath, productsFile string) error {
	slog.Info("opening database", slog.String("path", databasePath))

	conn, err := sqlite.Open(databasePath)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer conn.Close()

	if err := sqlite.RunMigrations(ctx, conn); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products file")
	}

	repo := sqlite.NewProductRepository(conn)

	var inserted, skipped int
	for _, p := range products {
		exists, err := repo.ExistsByName(ctx, p.Name)
		if err != nil {
			return errors.Wrapf(err, "check product %q", p.Name)
		}
		if exists {
			skipped++
			continue
		}

		id, err := repo.Insert(ctx, product.Product{
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Quantity:    p.Quantity,
			Image:       p.Image,
		})
		if err != nil {
			return errors.Wrapf(err, "insert product %q", p.Name)
		}
		slog.Info("inserted product", slog.Int64("id", id), slog.String("name", p.Name))
		inserted++
	}

	slog.Info("seed summary", slog.Int("inserted", inserted), slog.Int("skipped", skipped))
	return nil
}
