package purchase

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/apperr"
	"github.com/your-org/pos-backend/internal/domain/financial"
	"github.com/your-org/pos-backend/internal/domain/product"
	"github.com/your-org/pos-backend/internal/domain/stock"
	"github.com/your-org/pos-backend/internal/domain/supplier"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&product.Category{}, &product.Product{},
		&supplier.Supplier{},
		&PurchaseOrder{}, &PurchaseOrderItem{},
		&stock.StockMovement{},
		&financial.FinancialAccount{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(db *gorm.DB) *Service {
	cfg := &config.Config{}
	return NewService(db, cfg, stock.NewService(db, cfg, nil), financial.NewService(db, cfg), nil)
}

func seedSupplier(t *testing.T, db *gorm.DB, name string) *supplier.Supplier {
	s := &supplier.Supplier{Name: name, IsActive: true}
	require.NoError(t, db.Create(s).Error)
	return s
}

func seedProduct(t *testing.T, db *gorm.DB, name string, qty int) *product.Product {
	p := &product.Product{
		Barcode:   name,
		Name:      name,
		SalePrice: 1000,
		Quantity:  qty,
		IsActive:  true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestCreateOrderPending(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	sup := seedSupplier(t, db, "Distribuidora Sul")
	p1 := seedProduct(t, db, "coffee", 5)
	p2 := seedProduct(t, db, "sugar", 5)

	order, err := svc.CreateOrder(&OrderCreateRequest{
		SupplierID: sup.ID,
		Items: []OrderItemRequest{
			{ProductID: p1.ID, Quantity: 10, UnitCost: 600},
			{ProductID: p2.ID, Quantity: 20, UnitCost: 250},
		},
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, int64(11000), order.Total)
	assert.Regexp(t, `^OC-\d{8}-\d{5}$`, order.OrderNumber)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "coffee", order.Items[0].ProductName)

	// Stock is untouched until receipt
	var p product.Product
	require.NoError(t, db.First(&p, p1.ID).Error)
	assert.Equal(t, 5, p.Quantity)
}

func TestCreateOrderValidation(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)
	sup := seedSupplier(t, db, "Atacadao")
	p := seedProduct(t, db, "rice", 5)

	_, err := svc.CreateOrder(&OrderCreateRequest{SupplierID: sup.ID}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.CreateOrder(&OrderCreateRequest{
		SupplierID: 99,
		Items:      []OrderItemRequest{{ProductID: p.ID, Quantity: 1, UnitCost: 100}},
	}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = svc.CreateOrder(&OrderCreateRequest{
		SupplierID: sup.ID,
		Items:      []OrderItemRequest{{ProductID: p.ID, Quantity: 0, UnitCost: 100}},
	}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.CreateOrder(&OrderCreateRequest{
		SupplierID: sup.ID,
		Items:      []OrderItemRequest{{ProductID: 99, Quantity: 1, UnitCost: 100}},
	}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestReceiveOrderCreditsStockAndOpensPayable(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	sup := seedSupplier(t, db, "Distribuidora Norte")
	p1 := seedProduct(t, db, "beans", 2)
	p2 := seedProduct(t, db, "flour", 0)

	order, err := svc.CreateOrder(&OrderCreateRequest{
		SupplierID: sup.ID,
		Items: []OrderItemRequest{
			{ProductID: p1.ID, Quantity: 8, UnitCost: 900},
			{ProductID: p2.ID, Quantity: 15, UnitCost: 400},
		},
	}, 1)
	require.NoError(t, err)

	received, err := svc.ReceiveOrder(order.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, OrderStatusReceived, received.Status)
	assert.NotNil(t, received.ReceivedAt)

	var reloaded product.Product
	require.NoError(t, db.First(&reloaded, p1.ID).Error)
	assert.Equal(t, 10, reloaded.Quantity)
	var reloaded2 product.Product
	require.NoError(t, db.First(&reloaded2, p2.ID).Error)
	assert.Equal(t, 15, reloaded2.Quantity)

	// Entry movements reference the order
	var movements []stock.StockMovement
	require.NoError(t, db.Where("reference_type = ? AND reference_id = ?", "purchase_order", order.ID).Find(&movements).Error)
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, stock.MovementTypeEntry, m.Type)
		assert.Equal(t, uint(2), m.CreatedBy)
	}

	// The order total became an open payable tied to the supplier
	var payable financial.FinancialAccount
	require.NoError(t, db.Where("reference_type = ? AND reference_id = ?", "purchase_order", order.ID).First(&payable).Error)
	assert.Equal(t, financial.AccountTypePayable, payable.Type)
	assert.Equal(t, financial.AccountStatusOpen, payable.Status)
	assert.Equal(t, int64(13200), payable.Amount)
	require.NotNil(t, payable.SupplierID)
	assert.Equal(t, sup.ID, *payable.SupplierID)
}

func TestReceiveOrderTwiceFails(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	sup := seedSupplier(t, db, "Cooperativa")
	p := seedProduct(t, db, "oats", 0)

	order, err := svc.CreateOrder(&OrderCreateRequest{
		SupplierID: sup.ID,
		Items:      []OrderItemRequest{{ProductID: p.ID, Quantity: 5, UnitCost: 100}},
	}, 1)
	require.NoError(t, err)

	_, err = svc.ReceiveOrder(order.ID, 1)
	require.NoError(t, err)

	_, err = svc.ReceiveOrder(order.ID, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrAlreadyCancelled))

	// No double crediting
	var reloaded product.Product
	require.NoError(t, db.First(&reloaded, p.ID).Error)
	assert.Equal(t, 5, reloaded.Quantity)
}

func TestCancelOrder(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	sup := seedSupplier(t, db, "Mercantil")
	p := seedProduct(t, db, "corn", 0)

	order, err := svc.CreateOrder(&OrderCreateRequest{
		SupplierID: sup.ID,
		Items:      []OrderItemRequest{{ProductID: p.ID, Quantity: 5, UnitCost: 100}},
	}, 1)
	require.NoError(t, err)

	cancelled, err := svc.CancelOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	// A cancelled order can be neither received nor cancelled again
	_, err = svc.ReceiveOrder(order.ID, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrAlreadyCancelled))

	_, err = svc.CancelOrder(order.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrAlreadyCancelled))
}
