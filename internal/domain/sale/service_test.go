package sale

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/apperr"
	"github.com/your-org/pos-backend/internal/domain/audit"
	"github.com/your-org/pos-backend/internal/domain/client"
	"github.com/your-org/pos-backend/internal/domain/product"
	"github.com/your-org/pos-backend/internal/domain/stock"
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
		&client.Client{},
		&Sale{}, &SaleItem{},
		&stock.StockMovement{},
		&audit.AuditLog{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Sales: config.SalesConfig{
			DefaultCurrency:    "BRL",
			SaleNumberPrefix:   "VND",
			LowStockLogEnabled: false,
		},
	}
}

func newTestService(db *gorm.DB) *Service {
	cfg := testConfig()
	return NewService(db, cfg,
		stock.NewService(db, cfg, nil),
		client.NewService(db, cfg),
		audit.NewService(db, nil),
		nil,
	)
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price int64, qty int) *product.Product {
	p := &product.Product{
		Barcode:   name,
		Name:      name,
		SalePrice: price,
		Quantity:  qty,
		IsActive:  true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedClient(t *testing.T, db *gorm.DB, name string, creditLimit, currentDebt int64) *client.Client {
	c := &client.Client{
		Name:        name,
		CreditLimit: creditLimit,
		CurrentDebt: currentDebt,
		IsActive:    true,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func reloadProduct(t *testing.T, db *gorm.DB, id uint) *product.Product {
	var p product.Product
	require.NoError(t, db.First(&p, id).Error)
	return &p
}

func reloadClient(t *testing.T, db *gorm.DB, id uint) *client.Client {
	var c client.Client
	require.NoError(t, db.First(&c, id).Error)
	return &c
}

func TestCreateSaleCashHappyPath(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	p1 := seedProduct(t, db, "coffee", 1000, 10)
	p2 := seedProduct(t, db, "sugar", 500, 4)

	s, err := svc.CreateSale(1, &CreateSaleRequest{
		Items: []SaleItemRequest{
			{ProductID: p1.ID, Quantity: 3},
			{ProductID: p2.ID, Quantity: 2},
		},
		PaymentMethod: PaymentMethodCash,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(4000), s.Subtotal)
	assert.Equal(t, int64(4000), s.Total)
	assert.Equal(t, PaymentStatusPaid, s.PaymentStatus)
	assert.Regexp(t, `^VND-\d{8}-\d{5}$`, s.SaleNumber)
	assert.Len(t, s.Items, 2)
	assert.Equal(t, "coffee", s.Items[0].ProductName)

	assert.Equal(t, 7, reloadProduct(t, db, p1.ID).Quantity)
	assert.Equal(t, 2, reloadProduct(t, db, p2.ID).Quantity)

	// One EXIT movement per line, referencing the sale
	var movements []stock.StockMovement
	require.NoError(t, db.Where("reference_type = ? AND reference_id = ?", "sale", s.ID).Find(&movements).Error)
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, stock.MovementTypeExit, m.Type)
	}

	// Workflow left an audit entry
	var logs []audit.AuditLog
	require.NoError(t, db.Where("action = ?", "sale.create").Find(&logs).Error)
	assert.Len(t, logs, 1)
}

func TestCreateSaleDiscounts(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	p := seedProduct(t, db, "soda", 800, 10)

	s, err := svc.CreateSale(1, &CreateSaleRequest{
		Items: []SaleItemRequest{
			{ProductID: p.ID, Quantity: 2, Discount: 100},
		},
		Discount:      200,
		PaymentMethod: PaymentMethodCard,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1500), s.Subtotal)
	assert.Equal(t, int64(1300), s.Total)

	// A sale discount larger than the computed subtotal is rejected
	_, err = svc.CreateSale(1, &CreateSaleRequest{
		Items: []SaleItemRequest{
			{ProductID: p.ID, Quantity: 1},
		},
		Discount:      900,
		PaymentMethod: PaymentMethodCash,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Equal(t, 8, reloadProduct(t, db, p.ID).Quantity)
}

func TestCreateSaleInsufficientStock(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	p := seedProduct(t, db, "rice", 2000, 2)

	_, err := svc.CreateSale(1, &CreateSaleRequest{
		Items:         []SaleItemRequest{{ProductID: p.ID, Quantity: 5}},
		PaymentMethod: PaymentMethodCash,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))

	// Nothing persisted
	assert.Equal(t, 2, reloadProduct(t, db, p.ID).Quantity)
	var count int64
	db.Model(&Sale{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateSalePartialFailureRollsBackEverything(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	p1 := seedProduct(t, db, "beans", 1500, 10)
	p2 := seedProduct(t, db, "flour", 900, 1)

	// Second line fails, first line's debit must be undone
	_, err := svc.CreateSale(1, &CreateSaleRequest{
		Items: []SaleItemRequest{
			{ProductID: p1.ID, Quantity: 4},
			{ProductID: p2.ID, Quantity: 3},
		},
		PaymentMethod: PaymentMethodCash,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))

	assert.Equal(t, 10, reloadProduct(t, db, p1.ID).Quantity)
	assert.Equal(t, 1, reloadProduct(t, db, p2.ID).Quantity)

	var movementCount int64
	db.Model(&stock.StockMovement{}).Count(&movementCount)
	assert.Equal(t, int64(0), movementCount)
}

func TestCreateSaleInactiveProduct(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	p := seedProduct(t, db, "legacy", 1000, 10)
	require.NoError(t, db.Model(p).Update("is_active", false).Error)

	_, err := svc.CreateSale(1, &CreateSaleRequest{
		Items:         []SaleItemRequest{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: PaymentMethodCash,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInactiveProduct))
}

func TestCreateSaleFiadoRequiresClient(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	p := seedProduct(t, db, "bread", 300, 10)

	_, err := svc.CreateSale(1, &CreateSaleRequest{
		Items:         []SaleItemRequest{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: PaymentMethodFiado,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrCreditSaleRequiresClient))
}

func TestCreateSaleFiadoExtendsDebt(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	p := seedProduct(t, db, "milk", 700, 10)
	c := seedClient(t, db, "Maria", 10000, 0)

	s, err := svc.CreateSale(1, &CreateSaleRequest{
		ClientID:      &c.ID,
		Items:         []SaleItemRequest{{ProductID: p.ID, Quantity: 4}},
		PaymentMethod: PaymentMethodFiado,
	})
	require.NoError(t, err)

	assert.Equal(t, PaymentStatusPending, s.PaymentStatus)
	assert.Equal(t, int64(2800), reloadClient(t, db, c.ID).CurrentDebt)
	assert.Equal(t, 6, reloadProduct(t, db, p.ID).Quantity)
}

func TestCreateSaleFiadoCreditLimitExceededRollsBack(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	p := seedProduct(t, db, "cheese", 3000, 10)
	c := seedClient(t, db, "Joao", 5000, 0)

	_, err := svc.CreateSale(1, &CreateSaleRequest{
		ClientID:      &c.ID,
		Items:         []SaleItemRequest{{ProductID: p.ID, Quantity: 2}},
		PaymentMethod: PaymentMethodFiado,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrCreditLimitExceeded))

	// The whole transaction rolled back: stock, sale, movements, debt
	assert.Equal(t, 10, reloadProduct(t, db, p.ID).Quantity)
	assert.Equal(t, int64(0), reloadClient(t, db, c.ID).CurrentDebt)

	var saleCount, movementCount int64
	db.Model(&Sale{}).Count(&saleCount)
	db.Model(&stock.StockMovement{}).Count(&movementCount)
	assert.Equal(t, int64(0), saleCount)
	assert.Equal(t, int64(0), movementCount)
}

func TestCreateSaleUnknownClient(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	p := seedProduct(t, db, "eggs", 1200, 10)
	unknown := uint(999)

	_, err := svc.CreateSale(1, &CreateSaleRequest{
		ClientID:      &unknown,
		Items:         []SaleItemRequest{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: PaymentMethodCash,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCancelSaleRestoresStockAndDebt(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	p := seedProduct(t, db, "butter", 900, 8)
	c := seedClient(t, db, "Ana", 20000, 0)

	s, err := svc.CreateSale(1, &CreateSaleRequest{
		ClientID:      &c.ID,
		Items:         []SaleItemRequest{{ProductID: p.ID, Quantity: 5}},
		PaymentMethod: PaymentMethodFiado,
	})
	require.NoError(t, err)
	require.Equal(t, 3, reloadProduct(t, db, p.ID).Quantity)
	require.Equal(t, int64(4500), reloadClient(t, db, c.ID).CurrentDebt)

	cancelled, err := svc.CancelSale(s.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, PaymentStatusCancelled, cancelled.PaymentStatus)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 8, reloadProduct(t, db, p.ID).Quantity)
	assert.Equal(t, int64(0), reloadClient(t, db, c.ID).CurrentDebt)

	// RETURN movements mirror the original EXIT movements
	var returns []stock.StockMovement
	require.NoError(t, db.Where("reference_type = ? AND reference_id = ? AND type = ?",
		"sale", s.ID, stock.MovementTypeReturn).Find(&returns).Error)
	assert.Len(t, returns, 1)
}

func TestCancelSaleTwiceFails(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	p := seedProduct(t, db, "oil", 2500, 10)

	s, err := svc.CreateSale(1, &CreateSaleRequest{
		Items:         []SaleItemRequest{{ProductID: p.ID, Quantity: 2}},
		PaymentMethod: PaymentMethodPix,
	})
	require.NoError(t, err)

	_, err = svc.CancelSale(s.ID, 1)
	require.NoError(t, err)
	require.Equal(t, 10, reloadProduct(t, db, p.ID).Quantity)

	_, err = svc.CancelSale(s.ID, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrAlreadyCancelled))

	// No double restock: quantity unchanged and only one RETURN movement
	assert.Equal(t, 10, reloadProduct(t, db, p.ID).Quantity)
	var returnCount int64
	db.Model(&stock.StockMovement{}).
		Where("reference_type = ? AND reference_id = ? AND type = ?", "sale", s.ID, stock.MovementTypeReturn).
		Count(&returnCount)
	assert.Equal(t, int64(1), returnCount)
}

func TestCancelSaleGuardedByStoredStatus(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	p := seedProduct(t, db, "vinegar", 1000, 10)

	s, err := svc.CreateSale(1, &CreateSaleRequest{
		Items:         []SaleItemRequest{{ProductID: p.ID, Quantity: 2}},
		PaymentMethod: PaymentMethodCash,
	})
	require.NoError(t, err)

	// The stored status is the gate, not the snapshot read at entry: a row
	// already cancelled out from under the workflow must not be re-credited
	require.NoError(t, db.Model(&Sale{}).Where("id = ?", s.ID).
		Update("payment_status", PaymentStatusCancelled).Error)

	_, err = svc.CancelSale(s.ID, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrAlreadyCancelled))
	assert.Equal(t, 8, reloadProduct(t, db, p.ID).Quantity)
}

func TestMarkPaidSettlesDebt(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	p := seedProduct(t, db, "honey", 2000, 10)
	c := seedClient(t, db, "Pedro", 10000, 0)

	s, err := svc.CreateSale(1, &CreateSaleRequest{
		ClientID:      &c.ID,
		Items:         []SaleItemRequest{{ProductID: p.ID, Quantity: 2}},
		PaymentMethod: PaymentMethodFiado,
	})
	require.NoError(t, err)
	require.Equal(t, int64(4000), reloadClient(t, db, c.ID).CurrentDebt)

	paid, err := svc.MarkPaid(s.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, int64(0), reloadClient(t, db, c.ID).CurrentDebt)

	// Paying again is rejected: the sale is no longer pending
	_, err = svc.MarkPaid(s.ID, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Equal(t, int64(0), reloadClient(t, db, c.ID).CurrentDebt)
}

func TestMarkPaidRejectsCancelledSale(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	p := seedProduct(t, db, "jam", 1500, 10)
	c := seedClient(t, db, "Lia", 10000, 0)

	s, err := svc.CreateSale(1, &CreateSaleRequest{
		ClientID:      &c.ID,
		Items:         []SaleItemRequest{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: PaymentMethodFiado,
	})
	require.NoError(t, err)

	_, err = svc.CancelSale(s.ID, 1)
	require.NoError(t, err)

	_, err = svc.MarkPaid(s.ID, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrAlreadyCancelled))
	assert.Equal(t, int64(0), reloadClient(t, db, c.ID).CurrentDebt)
}

func TestCreateSaleValidation(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	p := seedProduct(t, db, "salt", 100, 10)

	cases := []struct {
		name string
		req  *CreateSaleRequest
	}{
		{"no items", &CreateSaleRequest{PaymentMethod: PaymentMethodCash}},
		{"invalid payment method", &CreateSaleRequest{
			Items:         []SaleItemRequest{{ProductID: p.ID, Quantity: 1}},
			PaymentMethod: PaymentMethod("check"),
		}},
		{"zero quantity", &CreateSaleRequest{
			Items:         []SaleItemRequest{{ProductID: p.ID, Quantity: 0}},
			PaymentMethod: PaymentMethodCash,
		}},
		{"negative discount", &CreateSaleRequest{
			Items:         []SaleItemRequest{{ProductID: p.ID, Quantity: 1}},
			Discount:      -50,
			PaymentMethod: PaymentMethodCash,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateSale(1, tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation) || errors.Is(err, apperr.ErrCreditSaleRequiresClient))
		})
	}
}
