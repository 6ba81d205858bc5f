package persistence

import (
	"errors"
	"testing"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestAccount(t *testing.T, userID loyalty.UserID) *loyalty.MemberAccount {
	t.Helper()
	account, err := loyalty.NewMemberAccount(userID, loyalty.DefaultConfig().LowestTier())
	require.NoError(t, err)
	return account
}

// Test 1: FindByUserID NotFound 映射為 Domain 錯誤
func TestMemberAccountRepository_FindByUserID_NotFound(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewMemberAccountRepository(db)

	// Act
	account, err := repo.FindByUserID(nil, 42)

	// Assert
	assert.Nil(t, account)
	assert.ErrorIs(t, err, loyalty.ErrAccountNotFound)
	assert.NotErrorIs(t, err, gorm.ErrRecordNotFound)

	var domainErr *loyalty.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, loyalty.ErrCodeAccountNotFound, domainErr.Code)
}

// Test 2: Save 後可讀回
func TestMemberAccountRepository_SaveAndFind(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewMemberAccountRepository(db)

	require.NoError(t, repo.Save(nil, newTestAccount(t, 42)))

	found, err := repo.FindByUserID(nil, 42)
	require.NoError(t, err)
	assert.Equal(t, loyalty.UserID(42), found.UserID())
	assert.Equal(t, 0, found.Balance().Value())
	assert.Equal(t, "普通会员", found.TierLabel())
	assert.True(t, found.LegacyMigrated())
}

// Test 3: 重複 Save 映射為 ErrAccountAlreadyExists
func TestMemberAccountRepository_Save_Duplicate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewMemberAccountRepository(db)

	require.NoError(t, repo.Save(nil, newTestAccount(t, 42)))
	err := repo.Save(nil, newTestAccount(t, 42))

	assert.ErrorIs(t, err, loyalty.ErrAccountAlreadyExists)
}

// Test 4: Update 寫入零值餘額
func TestMemberAccountRepository_Update_WritesZeroBalance(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewMemberAccountRepository(db)

	account := newTestAccount(t, 42)
	require.NoError(t, repo.Save(nil, account))

	earned, _ := loyalty.NewPointsAmount(300)
	account.AwardPoints(earned, 1)
	require.NoError(t, repo.Update(nil, account))

	account.DeductRedeemedPoints(earned, 2)
	require.NoError(t, repo.Update(nil, account))

	found, err := repo.FindByUserID(nil, 42)
	require.NoError(t, err)
	assert.Equal(t, 0, found.Balance().Value())
}

// Test 5: Update 不存在的帳戶
func TestMemberAccountRepository_Update_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewMemberAccountRepository(db)

	err := repo.Update(nil, newTestAccount(t, 42))

	assert.ErrorIs(t, err, loyalty.ErrAccountNotFound)
}

// Test 6: 舊版列可讀取並保留 legacy 欄位
func TestMemberAccountRepository_LegacyRow(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewMemberAccountRepository(db)
	createLegacyAccount(t, db, 7, 0, 900)

	account, err := repo.FindByUserID(nil, 7)
	require.NoError(t, err)
	assert.False(t, account.LegacyMigrated())
	assert.Equal(t, 900, account.LegacyPoints())

	require.True(t, account.AdoptLegacyBalance())
	require.NoError(t, repo.Update(nil, account))

	reloaded, err := repo.FindByUserID(nil, 7)
	require.NoError(t, err)
	assert.True(t, reloaded.LegacyMigrated())
	assert.Equal(t, 900, reloaded.Balance().Value())
}
