package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/olids-ncl/record-explorer/pkg/common/models"
)

// GetAppointments returns appointments with their practitioners, most recent
// first. When includeFuture is set, the date bounds become disjunctions with
// "starts after now" so a past-oriented range never hides upcoming
// appointments.
func (r *Repository) GetAppointments(ctx context.Context, personID string, f models.RecordFilter, includeFuture bool, now time.Time, limit int) ([]models.Appointment, error) {
	clauses := []string{"a.person_id = ?"}
	args := []interface{}{personID}

	if f.DateFrom != nil {
		if includeFuture {
			clauses = append(clauses, "(a.start_date >= ? OR a.start_date > ?)")
			args = append(args, *f.DateFrom, now)
		} else {
			clauses = append(clauses, "a.start_date >= ?")
			args = append(args, *f.DateFrom)
		}
	}
	if f.DateTo != nil {
		if includeFuture {
			clauses = append(clauses, "(a.start_date <= ? OR a.start_date > ?)")
			args = append(args, *f.DateTo, now)
		} else {
			clauses = append(clauses, "a.start_date <= ?")
			args = append(args, *f.DateTo)
		}
	}

	query := fmt.Sprintf(`SELECT
	a.id,
	a.start_date,
	a.appointment_status,
	a.contact_mode,
	a.national_slot_category_name,
	a.planned_duration,
	a.actual_duration,
	a.patient_wait,
	pr.last_name AS practitioner_last_name,
	pr.first_name AS practitioner_first_name,
	pr.title AS practitioner_title
FROM %s a
LEFT JOIN %s ap ON ap.appointment_id = a.id
LEFT JOIN %s pr ON pr.id = ap.practitioner_id
WHERE %s
ORDER BY a.start_date DESC
LIMIT ?`, r.tables.Appointment, r.tables.AppointmentPractitioner, r.tables.Practitioner,
		strings.Join(clauses, " AND "))
	args = append(args, limit)

	var rows []models.Appointment
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetAppointmentSummary aggregates the full appointment record. last_12_months
// counts rows starting on or after the supplied cutoff.
func (r *Repository) GetAppointmentSummary(ctx context.Context, personID string, last12Cutoff time.Time) (models.AppointmentSummary, error) {
	query := fmt.Sprintf(`SELECT
	COUNT(*) AS total,
	COUNT(CASE WHEN start_date >= ? THEN 1 END) AS last_12_months,
	MIN(start_date) AS earliest_date,
	MAX(start_date) AS most_recent_date
FROM %s
WHERE person_id = ?`, r.tables.Appointment)

	var summary models.AppointmentSummary
	if err := r.db.WithContext(ctx).Raw(query, last12Cutoff, personID).Scan(&summary).Error; err != nil {
		return models.AppointmentSummary{}, err
	}
	return summary, nil
}
