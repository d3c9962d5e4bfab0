//go:build integration

package sqlstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/nextstep/gift/internal/database"
	"github.com/nextstep/gift/internal/domain"
	"github.com/nextstep/gift/internal/domain/categories"
	"github.com/nextstep/gift/internal/domain/members"
	"github.com/nextstep/gift/internal/domain/options"
	"github.com/nextstep/gift/internal/domain/orders"
	"github.com/nextstep/gift/internal/domain/products"
	"github.com/nextstep/gift/internal/storage/sqlstore"
)

func setupMySQL(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping mysql integration tests")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, database.Options{Driver: database.DialectMySQL, DSN: dsn})
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		t.Fatalf("migrate db: %v", err)
	}

	cleanupTables(t, db)
	return db
}

func cleanupTables(t *testing.T, db *database.DB) {
	t.Helper()
	stmts := []string{
		"DELETE FROM orders",
		"DELETE FROM wishes",
		"DELETE FROM options",
		"DELETE FROM products",
		"DELETE FROM categories",
		"DELETE FROM members",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("cleanup %s: %v", stmt, err)
		}
	}
}

func TestPlaceOrderMySQLIntegration(t *testing.T) {
	db := setupMySQL(t)
	defer db.Close()

	ctx := context.Background()
	c := domain.New(sqlstore.NewDomainOptions(db.DB))

	category, err := c.Categories.Create(ctx, categories.Input{Name: "Integration", Color: "#000000", ImageURL: "https://example.com/c.png"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	product, err := c.Products.Create(ctx, products.Input{Name: "Integration", Price: 1000, ImageURL: "https://example.com/p.png", CategoryID: category.ID})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	option, err := c.Options.Create(ctx, product.ID, options.Input{Name: "Default", Quantity: 3})
	if err != nil {
		t.Fatalf("create option: %v", err)
	}
	member, err := c.Members.Create(ctx, "integration@example.com", "password")
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if _, err := c.Members.Create(ctx, "integration@example.com", "password"); err != members.ErrEmailExists {
		t.Fatalf("expected duplicate email error, got %v", err)
	}
	if _, err := c.Members.ChargePoint(ctx, member.ID, 5000); err != nil {
		t.Fatalf("charge point: %v", err)
	}

	if _, err := c.Orders.Place(ctx, member.ID, orders.PlaceInput{OptionID: option.ID, Quantity: 3}); err != nil {
		t.Fatalf("place order: %v", err)
	}
	if _, err := c.Orders.Place(ctx, member.ID, orders.PlaceInput{OptionID: option.ID, Quantity: 1}); err != options.ErrInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	fetched, err := c.Members.Get(ctx, member.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if fetched.Point != 2000 {
		t.Fatalf("expected 2000 points left, got %d", fetched.Point)
	}

	if err := c.Categories.Delete(ctx, category.ID); err != categories.ErrInUse {
		t.Fatalf("expected category in use, got %v", err)
	}
}
