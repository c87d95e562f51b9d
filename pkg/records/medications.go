package records

import (
	"context"
	"fmt"

	"github.com/olids-ncl/record-explorer/pkg/common/models"
)

const medicationColumns = `mo.id,
	mo.clinical_effective_date,
	mo.mapped_concept_code,
	mo.mapped_concept_display,
	mo.dose,
	mo.quantity_value,
	mo.quantity_unit,
	mo.duration_days,
	mo.estimated_cost,
	mo.issue_method_description,
	ms.bnf_reference,
	ms.is_active AS statement_is_active,
	ms.cancellation_date,
	ms.expiry_date,
	ms.issue_method AS statement_issue_method,
	ms.authorisation_type`

// GetMedications returns medication orders joined with their parent
// statements, most recent first. The statement link is a weak reference, so
// the join is LEFT and statement fields may be null.
func (r *Repository) GetMedications(ctx context.Context, personID string, f models.RecordFilter, limit int) ([]models.Medication, error) {
	where, args := recordWhere("mo", personID, f)
	query := fmt.Sprintf(`SELECT
	%s
FROM %s mo
LEFT JOIN %s ms ON mo.medication_statement_id = ms.id
WHERE %s
ORDER BY mo.clinical_effective_date DESC
LIMIT ?`, medicationColumns, r.tables.MedicationOrder, r.tables.MedicationStatement, where)
	args = append(args, limit)

	var rows []models.Medication
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetMedicationStatusFields returns the status-relevant fields for every
// order a person has, uncapped. The summary's current count derives status
// from these rows with the same rule list used everywhere else.
func (r *Repository) GetMedicationStatusFields(ctx context.Context, personID string) ([]models.Medication, error) {
	query := fmt.Sprintf(`SELECT
	mo.id,
	mo.clinical_effective_date,
	mo.duration_days,
	ms.is_active AS statement_is_active,
	ms.cancellation_date,
	ms.expiry_date
FROM %s mo
LEFT JOIN %s ms ON mo.medication_statement_id = ms.id
WHERE mo.person_id = ?`, r.tables.MedicationOrder, r.tables.MedicationStatement)

	var rows []models.Medication
	if err := r.db.WithContext(ctx).Raw(query, personID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetMedicationAggregate returns total count and date bounds over the full
// medication order record, no date filter.
func (r *Repository) GetMedicationAggregate(ctx context.Context, personID string) (models.ObservationSummary, error) {
	query := fmt.Sprintf(`SELECT
	COUNT(*) AS total,
	MIN(clinical_effective_date) AS earliest_date,
	MAX(clinical_effective_date) AS most_recent_date
FROM %s
WHERE person_id = ?`, r.tables.MedicationOrder)

	var summary models.ObservationSummary
	if err := r.db.WithContext(ctx).Raw(query, personID).Scan(&summary).Error; err != nil {
		return models.ObservationSummary{}, err
	}
	return summary, nil
}
