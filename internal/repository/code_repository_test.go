package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hqops/invite-tracker/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	testDB := &DB{db}
	require.NoError(t, testDB.AutoMigrate())
	return testDB
}

func unusedCode(code, employeeID string, generatedAt time.Time) *models.InvitationCode {
	return &models.InvitationCode{
		Code:        code,
		EmployeeID:  employeeID,
		GeneratorID: employeeID,
		GeneratedAt: generatedAt,
		Status:      models.CodeStatusUnused,
	}
}

func TestInsertIfAbsent(t *testing.T) {
	repo := NewCodeRepository(setupTestDB(t))
	now := time.Now()

	inserted, err := repo.InsertIfAbsent(unusedCode("0042AAAAbbbb0001", "0042", now))
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same code value again: the unique index rejects it.
	inserted, err = repo.InsertIfAbsent(unusedCode("0042AAAAbbbb0001", "0042", now))
	require.NoError(t, err)
	assert.False(t, inserted)

	exists, err := repo.Exists("0042AAAAbbbb0001")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists("0042AAAAbbbb0002")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFindByCode(t *testing.T) {
	repo := NewCodeRepository(setupTestDB(t))

	_, err := repo.InsertIfAbsent(unusedCode("0042AAAAbbbb0001", "0042", time.Now()))
	require.NoError(t, err)

	found, err := repo.FindByCode("0042AAAAbbbb0001")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "0042", found.EmployeeID)
	assert.Equal(t, models.CodeStatusUnused, found.Status)

	missing, err := repo.FindByCode("9999AAAAbbbb9999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMarkRedeemed_SecondCallLoses(t *testing.T) {
	repo := NewCodeRepository(setupTestDB(t))
	now := time.Now()

	_, err := repo.InsertIfAbsent(unusedCode("0042AAAAbbbb0001", "0042", now))
	require.NoError(t, err)

	won, err := repo.MarkRedeemed("0042AAAAbbbb0001", "user-1", now)
	require.NoError(t, err)
	assert.True(t, won)

	// The status guard makes the second transition a no-op.
	won, err = repo.MarkRedeemed("0042AAAAbbbb0001", "user-2", now)
	require.NoError(t, err)
	assert.False(t, won)

	code, err := repo.FindByCode("0042AAAAbbbb0001")
	require.NoError(t, err)
	require.NotNil(t, code)
	assert.Equal(t, models.CodeStatusUsed, code.Status)
	require.NotNil(t, code.RedeemerID)
	assert.Equal(t, "user-1", *code.RedeemerID)
	require.NotNil(t, code.RedeemedAt)
}

func TestCountUsedInRange(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCodeRepository(db)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	seed := func(code, employeeID string, redeemedAt time.Time) {
		t.Helper()
		row := unusedCode(code, employeeID, redeemedAt.Add(-24*time.Hour))
		_, err := repo.InsertIfAbsent(row)
		require.NoError(t, err)
		won, err := repo.MarkRedeemed(code, "redeemer", redeemedAt)
		require.NoError(t, err)
		require.True(t, won)
	}

	seed("0042AAAAbbbb0001", "0042", start)
	seed("0042AAAAbbbb0002", "0042", start.Add(10*24*time.Hour))
	seed("0043AAAAbbbb0001", "0043", end.Add(-time.Second))
	// On the exclusive end bound: must not count.
	seed("0043AAAAbbbb0002", "0043", end)
	// Before the start bound: must not count.
	seed("0044AAAAbbbb0001", "0044", start.Add(-time.Second))

	// An unredeemed code inside the window never counts.
	_, err := repo.InsertIfAbsent(unusedCode("0045AAAAbbbb0001", "0045", start))
	require.NoError(t, err)

	counts, err := repo.CountUsedInRange(nil, start, end)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"0042": 2, "0043": 1}, counts)

	// Restricting the cohort drops everyone else.
	counts, err = repo.CountUsedInRange([]string{"0043"}, start, end)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"0043": 1}, counts)
}

func TestList_FiltersAndOrders(t *testing.T) {
	repo := NewCodeRepository(setupTestDB(t))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.InsertIfAbsent(unusedCode("0042AAAAbbbb0001", "0042", base))
	require.NoError(t, err)
	_, err = repo.InsertIfAbsent(unusedCode("0042AAAAbbbb0002", "0042", base.Add(time.Hour)))
	require.NoError(t, err)
	_, err = repo.InsertIfAbsent(unusedCode("0043AAAAbbbb0001", "0043", base.Add(2*time.Hour)))
	require.NoError(t, err)

	won, err := repo.MarkRedeemed("0042AAAAbbbb0001", "user-1", base.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, won)

	codes, total, err := repo.List(CodeFilter{EmployeeID: "0042"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, codes, 2)
	// Newest first.
	assert.Equal(t, "0042AAAAbbbb0002", codes[0].Code)
	assert.Equal(t, "0042AAAAbbbb0001", codes[1].Code)

	codes, total, err = repo.List(CodeFilter{Status: models.CodeStatusUsed}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, codes, 1)
	assert.Equal(t, "0042AAAAbbbb0001", codes[0].Code)

	codes, total, err = repo.List(CodeFilter{}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, codes, 1)
}
