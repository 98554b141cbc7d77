package services

import (
	"fmt"
	"testing"
	"time"

	"go-optics-pos/internal/database"
	"go-optics-pos/internal/events"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// hugeExponent parses from JSON without error but cannot be rescaled in memory.
var hugeExponent = decimal.New(1, 2000000000)

type testEnv struct {
	db       *gorm.DB
	bus      *events.Bus
	orders   *OrderService
	clients  *ClientService
	products *ProductService
	costs    *CostService
	ledger   *LedgerService
	finance  *FinanceService
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	env := &testEnv{
		db:       db,
		bus:      events.NewBus(),
		clients:  NewClientService(db),
		products: NewProductService(db),
		costs:    NewCostService(db),
		ledger:   NewLedgerService(db),
		finance:  NewFinanceService(db),
	}
	env.orders = NewOrderService(db, env.bus)
	env.orders.now = fixedClock
	env.clients.now = fixedClock
	env.costs.now = fixedClock
	env.ledger.now = fixedClock
	env.finance.now = fixedClock
	t.Cleanup(env.ledger.Subscribe(env.bus))
	return env
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s = %s, want %s", what, got, want)
	}
}
