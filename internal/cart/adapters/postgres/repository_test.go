//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	testpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dkovacevic/storefront/internal/cart/adapters/postgres"
	"github.com/dkovacevic/storefront/internal/cart/domain"
	"github.com/dkovacevic/storefront/internal/cart/ports"
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

// cart_items references products, so every product id used in a test needs a
// catalog row behind it.
func seedProducts(t *testing.T, pool *pgxpool.Pool, productIDs ...string) {
	t.Helper()
	for _, id := range productIDs {
		_, err := pool.Exec(context.Background(),
			`INSERT INTO products (id, name, description, price, stock, created_at, updated_at)
			 VALUES ($1, $2, '', 19.99, 100, now(), now())
			 ON CONFLICT (id) DO NOTHING`,
			id, "Widget "+id)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", id, err)
		}
	}
}

func newItem(userID, productID string, quantity int) domain.Item {
	now := time.Now().UTC()
	return domain.Item{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRepositorySaveAndFind(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()
	seedProducts(t, pool, "prod-1", "prod-2")

	item := newItem("user-1", "prod-1", 2)
	if err := repo.Save(ctx, item); err != nil {
		t.Fatalf("failed to save cart item: %v", err)
	}

	retrieved, err := repo.FindByUserAndProduct(ctx, "user-1", "prod-1")
	if err != nil {
		t.Fatalf("failed to find cart item: %v", err)
	}
	if retrieved.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", retrieved.Quantity)
	}

	if _, err := repo.FindByUserAndProduct(ctx, "user-1", "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositorySave_UpsertsOnPair(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()
	seedProducts(t, pool, "prod-1", "prod-2")

	first := newItem("user-1", "prod-1", 2)
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("failed to save cart item: %v", err)
	}

	second := newItem("user-1", "prod-1", 5)
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("failed to upsert cart item: %v", err)
	}

	items, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("failed to list cart items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected a single line after upsert, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", items[0].Quantity)
	}
}

func TestRepositoryListByUser(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()
	seedProducts(t, pool, "prod-1", "prod-2")

	oldest := newItem("user-1", "prod-1", 1)
	oldest.CreatedAt = oldest.CreatedAt.Add(-time.Second)
	newest := newItem("user-1", "prod-2", 2)
	other := newItem("user-2", "prod-1", 3)

	for _, item := range []domain.Item{oldest, newest, other} {
		if err := repo.Save(ctx, item); err != nil {
			t.Fatalf("failed to save cart item: %v", err)
		}
	}

	items, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("failed to list cart items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ProductID != "prod-1" {
		t.Errorf("expected oldest line first, got %s", items[0].ProductID)
	}
}

func TestRepositoryDelete(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()
	seedProducts(t, pool, "prod-1", "prod-2")

	if err := repo.Save(ctx, newItem("user-1", "prod-1", 1)); err != nil {
		t.Fatalf("failed to save cart item: %v", err)
	}

	if err := repo.Delete(ctx, "user-1", "prod-1"); err != nil {
		t.Fatalf("failed to delete cart item: %v", err)
	}

	if err := repo.Delete(ctx, "user-1", "prod-1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRepositoryDeleteByUser(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()
	seedProducts(t, pool, "prod-1", "prod-2")

	if err := repo.Save(ctx, newItem("user-1", "prod-1", 1)); err != nil {
		t.Fatalf("failed to save cart item: %v", err)
	}
	if err := repo.Save(ctx, newItem("user-1", "prod-2", 1)); err != nil {
		t.Fatalf("failed to save cart item: %v", err)
	}

	if err := repo.DeleteByUser(ctx, "user-1"); err != nil {
		t.Fatalf("failed to clear cart: %v", err)
	}

	items, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("failed to list cart items: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty cart, got %d items", len(items))
	}

	// Clearing an empty cart is not an error.
	if err := repo.DeleteByUser(ctx, "user-1"); err != nil {
		t.Errorf("unexpected error clearing empty cart: %v", err)
	}
}
