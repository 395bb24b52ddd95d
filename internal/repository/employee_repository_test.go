package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hqops/invite-tracker/internal/models"
)

func seedEmployees(t *testing.T, db *DB) {
	t.Helper()
	for _, e := range []models.Employee{
		{EmployeeID: "0042", Name: "Ada", Status: models.EmployeeStatusActive},
		{EmployeeID: "0043", Name: "Grace", Status: models.EmployeeStatusActive},
		{EmployeeID: "0044", Name: "Edsger", Status: models.EmployeeStatusInactive},
		{EmployeeID: "0045", Name: "Barbara", Status: models.EmployeeStatusOnLeave},
	} {
		employee := e
		require.NoError(t, db.Create(&employee).Error)
	}
}

func TestFindActive(t *testing.T) {
	db := setupTestDB(t)
	seedEmployees(t, db)
	repo := NewEmployeeRepository(db)

	employees, err := repo.FindActive()
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, "0042", employees[0].EmployeeID)
	assert.Equal(t, "0043", employees[1].EmployeeID)
}

func TestNamesByIDs(t *testing.T) {
	db := setupTestDB(t)
	seedEmployees(t, db)
	repo := NewEmployeeRepository(db)

	// Inactive employees still resolve; unknown IDs are absent.
	names, err := repo.NamesByIDs([]string{"0042", "0044", "9999"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"0042": "Ada", "0044": "Edsger"}, names)

	names, err = repo.NamesByIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, names)
}
