package patient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/olids-ncl/record-explorer/pkg/common/config"
)

func setupMockWarehouse(t *testing.T) (sqlmock.Sqlmock, *Repository) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{})
	require.NoError(t, err)

	return mock, NewRepository(db, config.Load().Tables)
}

func TestSearchByEitherKeyBindsBothIdentifiers(t *testing.T) {
	mock, repo := setupMockWarehouse(t)

	rows := sqlmock.NewRows([]string{"person_id", "sk_patient_id", "age", "gender", "is_active", "is_deceased", "inactive_reason", "practice_name", "pcn_name", "ethnicity_subcategory"}).
		AddRow("P001", int64(12345), 58, "Female", true, false, nil, "The Surgery", "North PCN", "British")

	mock.ExpectQuery(`WHERE person_id = \$1 OR sk_patient_id = \$2`).
		WithArgs("12345", int64(12345)).
		WillReturnRows(rows)

	got, err := repo.SearchByEitherKey(context.Background(), "12345", 12345)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "P001", got[0].PersonID)
	assert.Equal(t, int64(12345), got[0].SKPatientID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchByNaturalIDSingleBind(t *testing.T) {
	mock, repo := setupMockWarehouse(t)

	mock.ExpectQuery(`WHERE person_id = \$1`).
		WithArgs("P001").
		WillReturnRows(sqlmock.NewRows([]string{"person_id", "sk_patient_id"}).AddRow("P001", int64(42)))

	got, err := repo.SearchByNaturalID(context.Background(), "P001")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDemographicsAliasesGeographyColumns(t *testing.T) {
	mock, repo := setupMockWarehouse(t)

	birth := time.Date(1967, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"person_id", "sk_patient_id", "age", "birth_date_approx", "lsoa_name", "imd_decile", "imd_quintile"}).
		AddRow("P001", int64(42), 58, birth, "Islington 012A", 3, 2)

	mock.ExpectQuery(`lsoa_name_21 AS lsoa_name`).
		WithArgs(int64(42)).
		WillReturnRows(rows)

	got, err := repo.GetDemographics(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, got.LSOAName)
	assert.Equal(t, "Islington 012A", *got.LSOAName)
	require.NotNil(t, got.IMDDecile)
	assert.Equal(t, 3, *got.IMDDecile)
}

func TestGetDemographicsNoRowIsNotFound(t *testing.T) {
	mock, repo := setupMockWarehouse(t)

	mock.ExpectQuery(`WHERE sk_patient_id = \$1`).
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"person_id"}))

	_, err := repo.GetDemographics(context.Background(), 999)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestResolveNaturalID(t *testing.T) {
	mock, repo := setupMockWarehouse(t)

	mock.ExpectQuery(`SELECT person_id FROM`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"person_id"}).AddRow("P001"))

	personID, err := repo.ResolveNaturalID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "P001", personID)
}

func TestResolveNaturalIDUnknownKey(t *testing.T) {
	mock, repo := setupMockWarehouse(t)

	mock.ExpectQuery(`SELECT person_id FROM`).
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"person_id"}))

	_, err := repo.ResolveNaturalID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestGetRegistrationHistoryOrdersDescending(t *testing.T) {
	mock, repo := setupMockWarehouse(t)

	newer := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	older := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"period_sequence", "is_current", "effective_start_date", "practice_name"}).
		AddRow(2, true, newer, "New Practice").
		AddRow(1, false, older, "Old Practice")

	mock.ExpectQuery(`ORDER BY effective_start_date DESC`).
		WithArgs("P001").
		WillReturnRows(rows)

	got, err := repo.GetRegistrationHistory(context.Background(), "P001")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].IsCurrent)
	assert.False(t, got[1].IsCurrent)
}

func TestGetConditionRegisterFiltersOnRegister(t *testing.T) {
	mock, repo := setupMockWarehouse(t)

	rows := sqlmock.NewRows([]string{"condition_code", "condition_name", "clinical_domain", "is_on_register", "is_qof"}).
		AddRow("AST", "Asthma", "Respiratory", true, true).
		AddRow("DEP", "Depression", "Mental Health", true, false)

	mock.ExpectQuery(`is_on_register = TRUE`).
		WithArgs("P001").
		WillReturnRows(rows)

	got, err := repo.GetConditionRegister(context.Background(), "P001")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].IsQOF)
}

func TestSearchPropagatesQueryError(t *testing.T) {
	mock, repo := setupMockWarehouse(t)

	mock.ExpectQuery(`WHERE person_id = \$1`).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.SearchByNaturalID(context.Background(), "P001")
	require.Error(t, err)
}
