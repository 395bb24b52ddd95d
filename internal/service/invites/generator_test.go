package invites

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hqops/invite-tracker/internal/models"
	"github.com/hqops/invite-tracker/internal/repository"
	"github.com/hqops/invite-tracker/pkg/logger"
)

// mockCodeStore is an in-memory CodeStore with overridable behavior.
type mockCodeStore struct {
	codes        map[string]*models.InvitationCode
	existsFunc   func(code string) (bool, error)
	insertedFunc func(code *models.InvitationCode) (bool, error)
}

func newMockCodeStore() *mockCodeStore {
	return &mockCodeStore{codes: make(map[string]*models.InvitationCode)}
}

func (m *mockCodeStore) Exists(code string) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(code)
	}
	_, ok := m.codes[code]
	return ok, nil
}

func (m *mockCodeStore) InsertIfAbsent(code *models.InvitationCode) (bool, error) {
	if m.insertedFunc != nil {
		return m.insertedFunc(code)
	}
	if _, ok := m.codes[code.Code]; ok {
		return false, nil
	}
	m.codes[code.Code] = code
	return true, nil
}

func (m *mockCodeStore) FindByCode(code string) (*models.InvitationCode, error) {
	row, ok := m.codes[code]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (m *mockCodeStore) MarkRedeemed(code, redeemerID string, at time.Time) (bool, error) {
	row, ok := m.codes[code]
	if !ok || row.Status != models.CodeStatusUnused {
		return false, nil
	}
	row.Status = models.CodeStatusUsed
	row.RedeemerID = &redeemerID
	row.RedeemedAt = &at
	return true, nil
}

func (m *mockCodeStore) List(_ repository.CodeFilter, _, _ int) ([]models.InvitationCode, int64, error) {
	return nil, 0, nil
}

// noopRanking ignores bump requests.
type noopRanking struct{}

func (noopRanking) BumpRedemption(context.Context, string, string) error { return nil }

func newTestService(store CodeStore) *Service {
	return NewServiceWithInterfaces(store, noopRanking{}, logger.Nop(), 15, 10)
}

func TestGenerate_CodeShape(t *testing.T) {
	service := newTestService(newMockCodeStore())

	code, err := service.Generate(context.Background(), "0042")
	require.NoError(t, err)

	assert.Len(t, code, 16)
	assert.Equal(t, "0042", code[:4])
	for _, ch := range code[4:] {
		assert.Contains(t, codeAlphabet, string(ch))
	}
}

func TestGenerate_InvalidEmployeeID(t *testing.T) {
	service := newTestService(newMockCodeStore())

	for _, id := range []string{"", "123", "12345", "12a4", "00-1"} {
		_, err := service.Generate(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidEmployeeID, "employee id %q", id)
	}
}

func TestGenerate_SkipsExistingCodes(t *testing.T) {
	store := newMockCodeStore()
	service := newTestService(store)

	// Issue a batch and make sure no duplicate ever comes back.
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := service.Generate(context.Background(), "7001")
		require.NoError(t, err)
		assert.False(t, seen[code], "generated duplicate code %s", code)
		seen[code] = true
		store.codes[code] = &models.InvitationCode{Code: code}
	}
}

func TestGenerate_ExhaustsAfterTenCollisions(t *testing.T) {
	store := newMockCodeStore()
	attempts := 0
	store.existsFunc = func(string) (bool, error) {
		attempts++
		return true, nil // every candidate collides
	}
	service := newTestService(store)

	_, err := service.Generate(context.Background(), "0042")
	assert.ErrorIs(t, err, ErrGenerationExhausted)
	assert.Equal(t, 10, attempts)
}

func TestRandomSuffix_AlphabetOnly(t *testing.T) {
	suffix := randomSuffix(1000)
	require.Len(t, suffix, 1000)
	for _, ch := range suffix {
		assert.True(t, strings.ContainsRune(codeAlphabet, ch))
	}
}
