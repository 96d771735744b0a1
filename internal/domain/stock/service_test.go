package stock

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/apperr"
	"github.com/your-org/pos-backend/internal/domain/product"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&product.Category{}, &product.Product{}, &StockMovement{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(db *gorm.DB) *Service {
	return NewService(db, &config.Config{}, nil)
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

func currentQuantity(t *testing.T, db *gorm.DB, id uint) int {
	var p product.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Quantity
}

func TestDebitGuardsAgainstOverselling(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)
	p := seedProduct(t, db, "soap", 3)

	err := svc.Debit(db, p.ID, 5, MovementTypeExit, 500, "test", "manual", 0, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))
	assert.Equal(t, 3, currentQuantity(t, db, p.ID))

	// Exact balance drains to zero
	err = svc.Debit(db, p.ID, 3, MovementTypeExit, 500, "test", "manual", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, currentQuantity(t, db, p.ID))

	// And one more unit fails
	err = svc.Debit(db, p.ID, 1, MovementTypeExit, 500, "test", "manual", 0, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))
}

func TestDebitUnknownProduct(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)

	err := svc.Debit(db, 42, 1, MovementTypeExit, 0, "test", "manual", 0, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDebitRecordsMovementSnapshot(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)
	p := seedProduct(t, db, "detergent", 10)

	require.NoError(t, svc.Debit(db, p.ID, 4, MovementTypeExit, 750, "Sale #VND-1", "sale", 7, 2))

	var m StockMovement
	require.NoError(t, db.Where("product_id = ?", p.ID).First(&m).Error)
	assert.Equal(t, MovementTypeExit, m.Type)
	assert.Equal(t, 4, m.Quantity)
	assert.Equal(t, 10, m.PreviousQuantity)
	assert.Equal(t, 6, m.NewQuantity)
	assert.Equal(t, int64(3000), m.TotalPrice)
	assert.Equal(t, "sale", m.ReferenceType)
	assert.Equal(t, uint(7), m.ReferenceID)
	assert.Equal(t, uint(2), m.CreatedBy)
}

func TestDebitRejectsInboundType(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)
	p := seedProduct(t, db, "towel", 10)

	err := svc.Debit(db, p.ID, 1, MovementTypeEntry, 0, "test", "manual", 0, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCreditIncreasesStock(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)
	p := seedProduct(t, db, "sponge", 2)

	require.NoError(t, svc.Credit(db, p.ID, 8, MovementTypeEntry, 300, "restock", "manual", 0, 1))
	assert.Equal(t, 10, currentQuantity(t, db, p.ID))

	var m StockMovement
	require.NoError(t, db.Where("product_id = ?", p.ID).First(&m).Error)
	assert.Equal(t, 2, m.PreviousQuantity)
	assert.Equal(t, 10, m.NewQuantity)
}

func TestRecordMovementEntryAndLoss(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)
	p := seedProduct(t, db, "bleach", 5)

	m, err := svc.RecordMovement(&MovementRequest{
		ProductID: p.ID,
		Type:      MovementTypeEntry,
		Quantity:  10,
		UnitPrice: 400,
		Reason:    "supplier delivery",
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, MovementTypeEntry, m.Type)
	assert.Equal(t, 15, currentQuantity(t, db, p.ID))

	m, err = svc.RecordMovement(&MovementRequest{
		ProductID: p.ID,
		Type:      MovementTypeLoss,
		Quantity:  3,
		Reason:    "expired",
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, MovementTypeLoss, m.Type)
	assert.Equal(t, 12, currentQuantity(t, db, p.ID))
}

func TestRecordMovementRejectsReservedTypes(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)
	p := seedProduct(t, db, "matches", 5)

	for _, mtype := range []MovementType{MovementTypeExit, MovementTypeReturn} {
		_, err := svc.RecordMovement(&MovementRequest{
			ProductID: p.ID,
			Type:      mtype,
			Quantity:  1,
		}, 1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	}
}

func TestRecordMovementAdjustment(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)
	p := seedProduct(t, db, "candles", 20)

	counted := 14
	m, err := svc.RecordMovement(&MovementRequest{
		ProductID: p.ID,
		Type:      MovementTypeAdjustment,
		Quantity:  1, // ignored for adjustments, the count drives the delta
		NewCount:  &counted,
		Reason:    "inventory count",
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, 14, currentQuantity(t, db, p.ID))
	assert.Equal(t, MovementTypeAdjustment, m.Type)
	assert.Equal(t, 6, m.Quantity)
	assert.Equal(t, 20, m.PreviousQuantity)
	assert.Equal(t, 14, m.NewQuantity)
}

func TestRecordMovementAdjustmentValidation(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)
	p := seedProduct(t, db, "lighters", 5)

	// Missing count
	_, err := svc.RecordMovement(&MovementRequest{
		ProductID: p.ID,
		Type:      MovementTypeAdjustment,
		Quantity:  1,
	}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	// Negative count
	negative := -1
	_, err = svc.RecordMovement(&MovementRequest{
		ProductID: p.ID,
		Type:      MovementTypeAdjustment,
		Quantity:  1,
		NewCount:  &negative,
	}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	// Count equal to current quantity is a no-op and rejected
	same := 5
	_, err = svc.RecordMovement(&MovementRequest{
		ProductID: p.ID,
		Type:      MovementTypeAdjustment,
		Quantity:  1,
		NewCount:  &same,
	}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestGetMovementsFilters(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestService(db)
	p1 := seedProduct(t, db, "pasta", 50)
	p2 := seedProduct(t, db, "sauce", 50)

	require.NoError(t, svc.Debit(db, p1.ID, 2, MovementTypeExit, 100, "Sale #VND-1", "sale", 1, 1))
	require.NoError(t, svc.Debit(db, p2.ID, 1, MovementTypeExit, 200, "Sale #VND-1", "sale", 1, 1))
	require.NoError(t, svc.Credit(db, p1.ID, 5, MovementTypeEntry, 80, "restock", "manual", 0, 1))

	movements, total, err := svc.GetMovements(&MovementListRequest{Page: 1, Limit: 20, ProductID: p1.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, movements, 2)

	movements, total, err = svc.GetMovements(&MovementListRequest{Page: 1, Limit: 20, Type: MovementTypeEntry})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, p1.ID, movements[0].ProductID)

	byRef, err := svc.GetMovementsByReference("sale", 1)
	require.NoError(t, err)
	assert.Len(t, byRef, 2)
}
