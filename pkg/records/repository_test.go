package records

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
	"github.com/olids-ncl/record-explorer/pkg/common/models"
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

func TestGetObservationsBindsAllFilters(t *testing.T) {
	mock, repo := setupMockWarehouse(t)

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	effective := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "clinical_effective_date", "mapped_concept_code", "mapped_concept_display", "result_value", "result_text", "result_unit_display"}).
		AddRow("obs-1", effective, "86290005", "Respiratory rate", 18.0, nil, "/min")

	mock.ExpectQuery(`SELECT(.|\n)*FROM olids_staging\.stg_olids_observation o(.|\n)*ILIKE(.|\n)*LIMIT`).
		WithArgs("P001", from, to, "%rate%", "%rate%", 1000).
		WillReturnRows(rows)

	filter := models.RecordFilter{DateFrom: &from, DateTo: &to, Search: "rate"}
	got, err := repo.GetObservations(context.Background(), "P001", filter, 1000)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "obs-1", got[0].ID)
	require.NotNil(t, got[0].ResultValue)
	assert.Equal(t, 18.0, *got[0].ResultValue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetObservationsWhitespaceSearchIgnored(t *testing.T) {
	mock, repo := setupMockWarehouse(t)

	mock.ExpectQuery(`FROM olids_staging\.stg_olids_observation o`).
		WithArgs("P001", 1000).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetObservations(context.Background(), "P001", models.RecordFilter{Search: "   "}, 1000)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetObservationsPropagatesError(t *testing.T) {
	mock, repo := setupMockWarehouse(t)

	mock.ExpectQuery(`FROM olids_staging\.stg_olids_observation o`).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetObservations(context.Background(), "P001", models.RecordFilter{}, 1000)
	require.Error(t, err)
}

func TestGetObservationSummaryZeroRecord(t *testing.T) {
	mock, repo := setupMockWarehouse(t)

	rows := sqlmock.NewRows([]string{"total", "earliest_date", "most_recent_date"}).
		AddRow(0, nil, nil)
	mock.ExpectQuery(`COUNT\(\*\) AS total`).
		WithArgs("P001").
		WillReturnRows(rows)

	summary, err := repo.GetObservationSummary(context.Background(), "P001")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Nil(t, summary.EarliestDate)
	assert.Nil(t, summary.MostRecentDate)
}

func TestGetMedicationsJoinsStatement(t *testing.T) {
	mock, repo := setupMockWarehouse(t)

	effective := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "clinical_effective_date", "mapped_concept_code", "mapped_concept_display",
		"dose", "quantity_value", "quantity_unit", "duration_days", "estimated_cost",
		"issue_method_description", "bnf_reference", "statement_is_active",
		"cancellation_date", "expiry_date", "statement_issue_method", "authorisation_type",
	}).AddRow(
		"med-1", effective, "322236005", "Paracetamol 500mg tablets",
		"1-2 tablets every 4-6 hours", 100.0, "tablet", 28.0, nil,
		"Acute", "0407010H0", true,
		nil, nil, "Repeat", "Prescribed",
	)

	mock.ExpectQuery(`LEFT JOIN olids_staging\.stg_olids_medication_statement ms ON mo\.medication_statement_id = ms\.id`).
		WithArgs("P001", 1000).
		WillReturnRows(rows)

	got, err := repo.GetMedications(context.Background(), "P001", models.RecordFilter{}, 1000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].StatementIsActive)
	assert.True(t, *got[0].StatementIsActive)
	require.NotNil(t, got[0].BNFReference)
	assert.Equal(t, "0407010H0", *got[0].BNFReference)
}

func TestGetAppointmentsFutureDisjunction(t *testing.T) {
	mock, repo := setupMockWarehouse(t)

	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	tomorrow := now.AddDate(0, 0, 1)

	rows := sqlmock.NewRows([]string{"id", "start_date", "appointment_status", "contact_mode", "national_slot_category_name", "planned_duration", "actual_duration", "patient_wait", "practitioner_last_name", "practitioner_first_name", "practitioner_title"}).
		AddRow("appt-1", tomorrow, "Booked", "face-to-face", "General Consultation", 15, nil, nil, "Patel", "Asha", "Dr")

	// dateFrom with includeFuture binds the disjunction: from OR after now.
	mock.ExpectQuery(`\(a\.start_date >= \$2 OR a\.start_date > \$3\)`).
		WithArgs("P001", from, now, 1000).
		WillReturnRows(rows)

	got, err := repo.GetAppointments(context.Background(), "P001", models.RecordFilter{DateFrom: &from}, true, now, 1000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "appt-1", got[0].ID)
	require.NotNil(t, got[0].PractitionerLastName)
	assert.Equal(t, "Patel", *got[0].PractitionerLastName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAppointmentSummaryBindsCutoff(t *testing.T) {
	mock, repo := setupMockWarehouse(t)

	cutoff := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	earliest := time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC)
	latest := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"total", "last_12_months", "earliest_date", "most_recent_date"}).
		AddRow(42, 6, earliest, latest)
	mock.ExpectQuery(`COUNT\(CASE WHEN start_date >= \$1 THEN 1 END\) AS last_12_months`).
		WithArgs(cutoff, "P001").
		WillReturnRows(rows)

	summary, err := repo.GetAppointmentSummary(context.Background(), "P001", cutoff)
	require.NoError(t, err)
	assert.Equal(t, 42, summary.Total)
	assert.Equal(t, 6, summary.Last12Months)
}
