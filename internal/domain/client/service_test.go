package client

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/apperr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&Client{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedClient(t *testing.T, db *gorm.DB, name string, creditLimit, currentDebt int64) *Client {
	c := &Client{
		Name:        name,
		CreditLimit: creditLimit,
		CurrentDebt: currentDebt,
		IsActive:    true,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func currentDebt(t *testing.T, db *gorm.DB, id uint) int64 {
	var c Client
	require.NoError(t, db.First(&c, id).Error)
	return c.CurrentDebt
}

func TestExtendCreditWithinLimit(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})
	c := seedClient(t, db, "Maria", 10000, 2000)

	require.NoError(t, svc.ExtendCredit(db, c.ID, 3000))
	assert.Equal(t, int64(5000), currentDebt(t, db, c.ID))

	// Up to the limit exactly
	require.NoError(t, svc.ExtendCredit(db, c.ID, 5000))
	assert.Equal(t, int64(10000), currentDebt(t, db, c.ID))
}

func TestExtendCreditExceedsLimit(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})
	c := seedClient(t, db, "Joao", 5000, 4000)

	err := svc.ExtendCredit(db, c.ID, 1500)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrCreditLimitExceeded))
	assert.Equal(t, int64(4000), currentDebt(t, db, c.ID))
}

func TestExtendCreditUnknownClient(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})

	err := svc.ExtendCredit(db, 99, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestSettleStrict(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})
	c := seedClient(t, db, "Ana", 10000, 3000)

	require.NoError(t, svc.Settle(c.ID, 1000))
	assert.Equal(t, int64(2000), currentDebt(t, db, c.ID))

	// Paying more than is owed fails and leaves the debt untouched
	err := svc.Settle(c.ID, 5000)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Equal(t, int64(2000), currentDebt(t, db, c.ID))

	require.NoError(t, svc.Settle(c.ID, 2000))
	assert.Equal(t, int64(0), currentDebt(t, db, c.ID))
}

func TestSettleFlooredClampsAtZero(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})
	c := seedClient(t, db, "Pedro", 10000, 1500)

	// A reversal larger than the remaining debt clears it without failing
	require.NoError(t, svc.SettleFloored(db, c.ID, 4000))
	assert.Equal(t, int64(0), currentDebt(t, db, c.ID))

	// Zero or negative amounts are no-ops
	require.NoError(t, svc.SettleFloored(db, c.ID, 0))
}

func TestSettleFlooredDecrementsInPlace(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})
	c := seedClient(t, db, "Nina", 20000, 8000)

	// The settlement is a relative decrement against the stored value, so a
	// debt change committed after the workflow loaded its snapshot still counts
	require.NoError(t, svc.ExtendCredit(db, c.ID, 3000))
	require.NoError(t, svc.SettleFloored(db, c.ID, 8000))
	assert.Equal(t, int64(3000), currentDebt(t, db, c.ID))
}

func TestSettleFlooredUnknownClient(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})

	err := svc.SettleFloored(db, 77, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCreateClientValidation(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})

	_, err := svc.CreateClient(&ClientCreateRequest{Name: "X", CreditLimit: -1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.CreateClient(&ClientCreateRequest{Name: "First", Document: "123", IsActive: true})
	require.NoError(t, err)

	// Duplicate document
	_, err = svc.CreateClient(&ClientCreateRequest{Name: "Second", Document: "123", IsActive: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestDeleteClientWithDebtFails(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})
	c := seedClient(t, db, "Carla", 10000, 500)

	err := svc.DeleteClient(c.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	require.NoError(t, svc.Settle(c.ID, 500))
	require.NoError(t, svc.DeleteClient(c.ID))

	_, err = svc.GetClient(c.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestUpdateClientCannotTouchDebt(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})
	c := seedClient(t, db, "Rui", 10000, 2500)

	limit := int64(20000)
	name := "Rui Santos"
	updated, err := svc.UpdateClient(c.ID, &ClientUpdateRequest{Name: &name, CreditLimit: &limit})
	require.NoError(t, err)

	assert.Equal(t, "Rui Santos", updated.Name)
	assert.Equal(t, int64(20000), updated.CreditLimit)
	assert.Equal(t, int64(2500), updated.CurrentDebt)
}
