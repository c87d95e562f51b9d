package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/olids-ncl/record-explorer/pkg/common/config"
	"github.com/olids-ncl/record-explorer/pkg/common/models"
	"gorm.io/gorm"
)

var ErrPatientNotFound = errors.New("patient not found")

const summaryColumns = `person_id,
	sk_patient_id,
	age,
	gender,
	is_active,
	is_deceased,
	inactive_reason,
	practice_name,
	pcn_name,
	ethnicity_subcategory`

// Repository reads the demographics dimension and the condition register.
// All queries are parameterized; table locations come from configuration.
type Repository struct {
	db     *gorm.DB
	tables config.Tables
}

func NewRepository(db *gorm.DB, tables config.Tables) *Repository {
	return &Repository{db: db, tables: tables}
}

// SearchByEitherKey matches the natural identifier or the numeric surrogate
// key. Used when the search term parses as an integer.
func (r *Repository) SearchByEitherKey(ctx context.Context, naturalID string, skPatientID int64) ([]models.PatientSummary, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE person_id = ? OR sk_patient_id = ?`,
		summaryColumns, r.tables.DimPerson)

	var rows []models.PatientSummary
	if err := r.db.WithContext(ctx).Raw(query, naturalID, skPatientID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SearchByNaturalID matches the natural identifier only.
func (r *Repository) SearchByNaturalID(ctx context.Context, naturalID string) ([]models.PatientSummary, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE person_id = ?`,
		summaryColumns, r.tables.DimPerson)

	var rows []models.PatientSummary
	if err := r.db.WithContext(ctx).Raw(query, naturalID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetDemographics returns the full current-state row for a surrogate key.
func (r *Repository) GetDemographics(ctx context.Context, skPatientID int64) (*models.PatientDemographics, error) {
	query := fmt.Sprintf(`SELECT
	person_id,
	sk_patient_id,
	age,
	age_life_stage,
	birth_date_approx,
	death_date_approx,
	gender,
	ethnicity_category,
	ethnicity_subcategory,
	is_primary_school_age,
	is_secondary_school_age,
	is_active,
	is_deceased,
	inactive_reason,
	practice_name,
	practice_code,
	pcn_name,
	pcn_code,
	icb_name,
	registration_start_date,
	registration_end_date,
	borough_registered,
	borough_resident,
	icb_resident,
	local_authority_name,
	is_london_resident,
	neighbourhood_resident,
	lsoa_name_21 AS lsoa_name,
	ward_name,
	imd_decile_19 AS imd_decile,
	imd_quintile_19 AS imd_quintile,
	main_language,
	language_type,
	interpreter_needed,
	interpreter_type
FROM %s
WHERE sk_patient_id = ?`, r.tables.DimPerson)

	var rows []models.PatientDemographics
	if err := r.db.WithContext(ctx).Raw(query, skPatientID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrPatientNotFound
	}
	return &rows[0], nil
}

// ResolveNaturalID maps a surrogate key to the natural identifier used by the
// clinical record tables.
func (r *Repository) ResolveNaturalID(ctx context.Context, skPatientID int64) (string, error) {
	query := fmt.Sprintf(`SELECT person_id FROM %s WHERE sk_patient_id = ?`, r.tables.DimPerson)

	var ids []string
	if err := r.db.WithContext(ctx).Raw(query, skPatientID).Scan(&ids).Error; err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", ErrPatientNotFound
	}
	return ids[0], nil
}

// GetRegistrationHistory returns all registration periods for a person, most
// recent first. The warehouse guarantees at most one row with is_current set.
func (r *Repository) GetRegistrationHistory(ctx context.Context, personID string) ([]models.RegistrationPeriod, error) {
	query := fmt.Sprintf(`SELECT
	effective_start_date,
	effective_end_date,
	is_current,
	period_sequence,
	is_active,
	practice_name,
	practice_code,
	pcn_name,
	registration_start_date,
	registration_end_date,
	ethnicity_subcategory,
	borough_registered,
	borough_resident,
	local_authority_name
FROM %s
WHERE person_id = ?
ORDER BY effective_start_date DESC`, r.tables.DimPersonHistorical)

	var rows []models.RegistrationPeriod
	if err := r.db.WithContext(ctx).Raw(query, personID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetConditionRegister returns on-register long-term conditions, QOF entries
// first, then by clinical domain and condition name.
func (r *Repository) GetConditionRegister(ctx context.Context, personID string) ([]models.ConditionRegisterEntry, error) {
	query := fmt.Sprintf(`SELECT
	condition_code,
	condition_name,
	clinical_domain,
	is_on_register,
	is_qof,
	earliest_diagnosis_date,
	latest_diagnosis_date
FROM %s
WHERE person_id = ?
	AND is_on_register = TRUE
ORDER BY
	is_qof DESC,
	clinical_domain,
	condition_name`, r.tables.LTCSummary)

	var rows []models.ConditionRegisterEntry
	if err := r.db.WithContext(ctx).Raw(query, personID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
