package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/olids-ncl/record-explorer/pkg/common/config"
	"github.com/olids-ncl/record-explorer/pkg/common/models"
	"gorm.io/gorm"
)

// Repository reads the clinical record tables. Every list query is ordered by
// effective/start date descending and capped by the caller-supplied limit;
// aggregates are uncapped. All filters are bound parameters.
type Repository struct {
	db     *gorm.DB
	tables config.Tables
}

func NewRepository(db *gorm.DB, tables config.Tables) *Repository {
	return &Repository{db: db, tables: tables}
}

// recordWhere accumulates filter predicates the way every record query needs
// them: person scope, inclusive date bounds, case-insensitive substring match
// over concept code and display.
func recordWhere(alias, personID string, f models.RecordFilter) (string, []interface{}) {
	clauses := []string{fmt.Sprintf("%s.person_id = ?", alias)}
	args := []interface{}{personID}

	if f.DateFrom != nil {
		clauses = append(clauses, fmt.Sprintf("%s.clinical_effective_date >= ?", alias))
		args = append(args, *f.DateFrom)
	}
	if f.DateTo != nil {
		clauses = append(clauses, fmt.Sprintf("%s.clinical_effective_date <= ?", alias))
		args = append(args, *f.DateTo)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		pattern := "%" + term + "%"
		clauses = append(clauses, fmt.Sprintf("(%s.mapped_concept_code ILIKE ? OR %s.mapped_concept_display ILIKE ?)", alias, alias))
		args = append(args, pattern, pattern)
	}

	return strings.Join(clauses, " AND "), args
}

// GetObservations returns observations for a person, most recent first.
func (r *Repository) GetObservations(ctx context.Context, personID string, f models.RecordFilter, limit int) ([]models.Observation, error) {
	where, args := recordWhere("o", personID, f)
	query := fmt.Sprintf(`SELECT
	o.id,
	o.clinical_effective_date,
	o.mapped_concept_code,
	o.mapped_concept_display,
	o.result_value,
	o.result_text,
	o.result_unit_display
FROM %s o
WHERE %s
ORDER BY o.clinical_effective_date DESC
LIMIT ?`, r.tables.Observation, where)
	args = append(args, limit)

	var rows []models.Observation
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetObservationSummary aggregates the full observation record with no date
// filter. A patient with no observations yields {0, nil, nil}.
func (r *Repository) GetObservationSummary(ctx context.Context, personID string) (models.ObservationSummary, error) {
	query := fmt.Sprintf(`SELECT
	COUNT(*) AS total,
	MIN(clinical_effective_date) AS earliest_date,
	MAX(clinical_effective_date) AS most_recent_date
FROM %s
WHERE person_id = ?`, r.tables.Observation)

	var summary models.ObservationSummary
	if err := r.db.WithContext(ctx).Raw(query, personID).Scan(&summary).Error; err != nil {
		return models.ObservationSummary{}, err
	}
	return summary, nil
}
