// Package dbtest opens isolated in-memory sqlite databases carrying the
// service schema, for repository and service tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mtaanigas/fulfillment-backend/pkg/db"
	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
	"github.com/mtaanigas/fulfillment-backend/pkg/types"
)

var schema = []string{`
CREATE TABLE users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'client',
  location TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  size TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE cart_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, product_id)
);`, `
CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  delivery_location TEXT NOT NULL,
  delivery_ward TEXT NOT NULL,
  special_instructions TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL DEFAULT 'cash',
  assignment_status TEXT NOT NULL DEFAULT 'unassigned',
  available_to_agents INTEGER NOT NULL DEFAULT 0,
  assignment_expiry DATETIME,
  dealer_id TEXT,
  total_amount NUMERIC NOT NULL,
  assigned_at DATETIME,
  delivered_at DATETIME,
  cancelled_at DATETIME,
  cancel_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  unit_price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL,
  line_total NUMERIC NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE order_status_history (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  seq INTEGER NOT NULL,
  status TEXT NOT NULL,
  changed_by TEXT NOT NULL,
  note TEXT,
  created_at DATETIME,
  UNIQUE (order_id, seq)
);`, `
CREATE TABLE order_dealer_candidates (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  dealer_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'available',
  match_score INTEGER NOT NULL,
  created_at DATETIME,
  UNIQUE (order_id, dealer_id)
);`, `
CREATE TABLE payment_methods (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  provider TEXT NOT NULL,
  last_four TEXT,
  phone_number TEXT,
  is_default INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  metadata TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE payments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  payment_method_id TEXT,
  method TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending_payment',
  transaction_id TEXT NOT NULL UNIQUE,
  phone_number TEXT,
  card_last4 TEXT,
  card_brand TEXT,
  simulation_code_hash TEXT NOT NULL,
  simulation_expires_at DATETIME NOT NULL,
  verification_attempts INTEGER NOT NULL DEFAULT 0,
  completed_at DATETIME,
  refunded_at DATETIME,
  failure_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`, `
CREATE TABLE outbox_dlq (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL UNIQUE,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload_json TEXT NOT NULL,
  error_reason TEXT NOT NULL,
  error_message TEXT,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  failed_at DATETIME,
  created_at DATETIME
);`,
}

// Open returns a fresh database with every table created. The pool is pinned
// to one connection so transactions serialize the way row locks would.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return conn
}

// Client wraps conn in the transactional client used by services.
func Client(conn *gorm.DB) *db.Client {
	return db.NewFromConn(conn)
}

// CreateUser inserts an active user with the given role and location.
func CreateUser(t testing.TB, conn *gorm.DB, role enums.UserRole, location string) *models.User {
	t.Helper()
	id := uuid.New()
	user := &models.User{
		ID:       id,
		Name:     fmt.Sprintf("%s %s", role, id.String()[:8]),
		Email:    fmt.Sprintf("%s@example.com", id),
		Role:     role,
		Location: types.ParseLocation(location),
		IsActive: true,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// CreateProduct inserts an active product.
func CreateProduct(t testing.TB, conn *gorm.DB, name string, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:       uuid.New(),
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

// AddToCart inserts a cart line.
func AddToCart(t testing.TB, conn *gorm.DB, userID, productID uuid.UUID, qty int) {
	t.Helper()
	item := &models.CartItem{ID: uuid.New(), UserID: userID, ProductID: productID, Quantity: qty}
	if err := conn.Create(item).Error; err != nil {
		t.Fatalf("create cart item: %v", err)
	}
}
