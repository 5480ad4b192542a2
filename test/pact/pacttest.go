//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "bookstore-api"
	ConsumerName = "storefront-web"

	StateCatalogSeeded = "catalog has book 1 in stock"
	StateOrderExists   = "order with id 1 exists"
	StateOrderMissing  = "no order with id 404"
)

const (
	ExistingBookID  int64 = 1
	ExistingOrderID int64 = 1
	MissingOrderID  int64 = 404

	CustomerID     int64 = 7
	IdempotencyKey       = "pact-order-key"
)

const (
	exampleBookTitle  = "Dune"
	exampleBookAuthor = "Frank Herbert"
	examplePriceCents = 1599
	exampleStock      = 10
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleBook provides stable catalog data shared by both sides of the
// contract.
func ExampleBook() map[string]any {
	return map[string]any{
		"id":         ExistingBookID,
		"title":      exampleBookTitle,
		"author":     exampleBookAuthor,
		"priceCents": examplePriceCents,
		"currency":   "USD",
		"quantity":   exampleStock,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
