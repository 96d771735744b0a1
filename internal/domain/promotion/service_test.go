package promotion

import (
	"errors"
	"fmt"
	"testing"
	"time"

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
	if err := db.AutoMigrate(&product.Category{}, &product.Product{}, &Promotion{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string) *product.Product {
	p := &product.Product{
		Barcode:   name,
		Name:      name,
		SalePrice: 1000,
		Quantity:  10,
		IsActive:  true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestCreatePromotion(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})
	p := seedProduct(t, db, "coffee")

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(24 * time.Hour)

	promo, err := svc.CreatePromotion(&PromotionCreateRequest{
		ProductID:        p.ID,
		Name:             "Coffee week",
		PromotionalPrice: 800,
		StartDate:        start,
		EndDate:          end,
	})
	require.NoError(t, err)

	assert.True(t, promo.IsActive)
	assert.True(t, promo.IsCurrent())
}

func TestCreatePromotionValidation(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})
	p := seedProduct(t, db, "tea")

	start := time.Now()
	end := start.Add(-time.Hour)

	_, err := svc.CreatePromotion(&PromotionCreateRequest{
		ProductID: p.ID, Name: "inverted", PromotionalPrice: 500,
		StartDate: start, EndDate: end,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.CreatePromotion(&PromotionCreateRequest{
		ProductID: p.ID, Name: "free", PromotionalPrice: 0,
		StartDate: start, EndDate: start.Add(time.Hour),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.CreatePromotion(&PromotionCreateRequest{
		ProductID: 99, Name: "ghost", PromotionalPrice: 500,
		StartDate: start, EndDate: start.Add(time.Hour),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestGetPromotionsCurrentFilter(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})
	p := seedProduct(t, db, "soda")

	now := time.Now()
	_, err := svc.CreatePromotion(&PromotionCreateRequest{
		ProductID: p.ID, Name: "running", PromotionalPrice: 700,
		StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = svc.CreatePromotion(&PromotionCreateRequest{
		ProductID: p.ID, Name: "expired", PromotionalPrice: 600,
		StartDate: now.Add(-48 * time.Hour), EndDate: now.Add(-24 * time.Hour),
	})
	require.NoError(t, err)

	promos, total, err := svc.GetPromotions(&PromotionListRequest{Page: 1, Limit: 20, Current: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "running", promos[0].Name)
}

func TestUpdatePromotionDateValidation(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})
	p := seedProduct(t, db, "juice")

	now := time.Now()
	promo, err := svc.CreatePromotion(&PromotionCreateRequest{
		ProductID: p.ID, Name: "juice sale", PromotionalPrice: 900,
		StartDate: now, EndDate: now.Add(48 * time.Hour),
	})
	require.NoError(t, err)

	// An end date before the existing start date is rejected before any write
	bad := now.Add(-time.Hour)
	_, err = svc.UpdatePromotion(promo.ID, &PromotionUpdateRequest{EndDate: &bad})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	reloaded, err := svc.GetPromotion(promo.ID)
	require.NoError(t, err)
	assert.Equal(t, promo.EndDate.Unix(), reloaded.EndDate.Unix())

	price := int64(850)
	updated, err := svc.UpdatePromotion(promo.ID, &PromotionUpdateRequest{PromotionalPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(850), updated.PromotionalPrice)
}

func TestDeletePromotion(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})
	p := seedProduct(t, db, "snack")

	now := time.Now()
	promo, err := svc.CreatePromotion(&PromotionCreateRequest{
		ProductID: p.ID, Name: "snack sale", PromotionalPrice: 300,
		StartDate: now, EndDate: now.Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePromotion(promo.ID))

	_, err = svc.GetPromotion(promo.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
