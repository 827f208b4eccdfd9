//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	testpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dkovacevic/storefront/internal/catalog/adapters/postgres"
	"github.com/dkovacevic/storefront/internal/catalog/domain"
	"github.com/dkovacevic/storefront/internal/catalog/ports"
	"github.com/dkovacevic/storefront/internal/database"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := testpostgres.Run(ctx,
		"postgres:16-alpine",
		testpostgres.WithDatabase("test"),
		testpostgres.WithUsername("test"),
		testpostgres.WithPassword("test"),
		testpostgres.BasicWaitStrategies(),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	projectRoot := findProjectRoot(t)
	migrationsPath := filepath.Join(projectRoot, "migrations")

	if err := database.RunMigrations(connStr, migrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := database.NewPool(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
	})

	return pool
}

func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

func seedProduct(t *testing.T, repo *postgres.Repository, id string, stock int) domain.Product {
	t.Helper()
	now := time.Now().UTC()
	product := domain.Product{
		ID:        id,
		Name:      "Widget",
		Price:     decimal.RequireFromString("19.99"),
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(context.Background(), product); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return product
}

func TestRepositoryCreateAndGet(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	product := seedProduct(t, repo, "test-product-1", 10)

	retrieved, err := repo.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("failed to retrieve product: %v", err)
	}
	if retrieved.Name != product.Name {
		t.Errorf("expected name %s, got %s", product.Name, retrieved.Name)
	}
	if !retrieved.Price.Equal(product.Price) {
		t.Errorf("expected price %s, got %s", product.Price, retrieved.Price)
	}
	if retrieved.Stock != 10 {
		t.Errorf("expected stock 10, got %d", retrieved.Stock)
	}

	if _, err := repo.GetByID(ctx, "nonexistent-id"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryReserveStock(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	product := seedProduct(t, repo, "test-product-reserve", 5)

	if err := repo.ReserveStock(ctx, product.ID, 3); err != nil {
		t.Fatalf("failed to reserve stock: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("failed to retrieve product: %v", err)
	}
	if retrieved.Stock != 2 {
		t.Errorf("expected stock 2, got %d", retrieved.Stock)
	}

	if err := repo.ReserveStock(ctx, product.ID, 3); !errors.Is(err, ports.ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got %v", err)
	}

	retrieved, _ = repo.GetByID(ctx, product.ID)
	if retrieved.Stock != 2 {
		t.Errorf("failed reservation must not change stock, got %d", retrieved.Stock)
	}

	if err := repo.ReserveStock(ctx, "nonexistent-id", 1); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryReserveStock_Concurrent(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	product := seedProduct(t, repo, "test-product-race", 5)

	// Ten concurrent single-unit reservations against five units: exactly
	// five must win and stock must land at zero, never negative.
	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.ReserveStock(ctx, product.ID, 1)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ports.ErrInsufficientStock) {
			t.Errorf("unexpected reservation error: %v", err)
		}
	}
	if succeeded != 5 {
		t.Errorf("expected 5 successful reservations, got %d", succeeded)
	}

	retrieved, err := repo.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("failed to retrieve product: %v", err)
	}
	if retrieved.Stock != 0 {
		t.Errorf("expected stock 0, got %d", retrieved.Stock)
	}
}

func TestRepositoryReleaseStock(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	product := seedProduct(t, repo, "test-product-release", 5)

	if err := repo.ReserveStock(ctx, product.ID, 5); err != nil {
		t.Fatalf("failed to reserve stock: %v", err)
	}
	if err := repo.ReleaseStock(ctx, product.ID, 5); err != nil {
		t.Fatalf("failed to release stock: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("failed to retrieve product: %v", err)
	}
	if retrieved.Stock != 5 {
		t.Errorf("expected stock 5, got %d", retrieved.Stock)
	}

	if err := repo.ReleaseStock(ctx, "nonexistent-id", 1); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryListByIDs(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	seedProduct(t, repo, "test-product-a", 1)
	seedProduct(t, repo, "test-product-b", 2)

	products, err := repo.ListByIDs(ctx, []string{"test-product-a", "test-product-b", "missing"})
	if err != nil {
		t.Fatalf("failed to list products: %v", err)
	}
	if len(products) != 2 {
		t.Errorf("expected 2 products, got %d", len(products))
	}

	empty, err := repo.ListByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("failed to list with no ids: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no products, got %d", len(empty))
	}
}
