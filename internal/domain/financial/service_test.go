package financial

import (
	"errors"
	"fmt"
	"testing"
	"time"

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
	if err := db.AutoMigrate(&FinancialAccount{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCreateAccount(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})

	due := time.Now().Add(72 * time.Hour)
	account, err := svc.CreateAccount(&AccountCreateRequest{
		Type:        AccountTypePayable,
		Description: "Electricity bill",
		Amount:      15000,
		DueDate:     &due,
	})
	require.NoError(t, err)

	assert.Equal(t, AccountStatusOpen, account.Status)
	assert.True(t, account.IsOpen())
	assert.False(t, account.IsOverdue())
}

func TestCreateAccountValidation(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})

	_, err := svc.CreateAccount(&AccountCreateRequest{
		Type:        AccountType("loan"),
		Description: "bad type",
		Amount:      100,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.CreateAccount(&AccountCreateRequest{
		Type:        AccountTypeReceivable,
		Description: "bad amount",
		Amount:      -5,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestPayAccountLifecycle(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})

	account, err := svc.CreateAccount(&AccountCreateRequest{
		Type:        AccountTypePayable,
		Description: "Supplier invoice",
		Amount:      8000,
	})
	require.NoError(t, err)

	paid, err := svc.PayAccount(account.ID)
	require.NoError(t, err)
	assert.Equal(t, AccountStatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)

	// Paid accounts cannot be paid or cancelled again
	_, err = svc.PayAccount(account.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.CancelAccount(account.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCancelAccount(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})

	account, err := svc.CreateAccount(&AccountCreateRequest{
		Type:        AccountTypeReceivable,
		Description: "Disputed charge",
		Amount:      2500,
	})
	require.NoError(t, err)

	cancelled, err := svc.CancelAccount(account.ID)
	require.NoError(t, err)
	assert.Equal(t, AccountStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
}

func TestGetAccountsFilters(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewService(db, &config.Config{})

	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)

	_, err := svc.CreateAccount(&AccountCreateRequest{
		Type: AccountTypePayable, Description: "overdue rent", Amount: 100000, DueDate: &past,
	})
	require.NoError(t, err)
	_, err = svc.CreateAccount(&AccountCreateRequest{
		Type: AccountTypePayable, Description: "future invoice", Amount: 5000, DueDate: &future,
	})
	require.NoError(t, err)
	_, err = svc.CreateAccount(&AccountCreateRequest{
		Type: AccountTypeReceivable, Description: "customer IOU", Amount: 700,
	})
	require.NoError(t, err)

	accounts, total, err := svc.GetAccounts(&AccountListRequest{Page: 1, Limit: 20, Type: AccountTypePayable})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, accounts, 2)

	accounts, total, err = svc.GetAccounts(&AccountListRequest{Page: 1, Limit: 20, Overdue: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "overdue rent", accounts[0].Description)
	assert.True(t, accounts[0].IsOverdue())
}
