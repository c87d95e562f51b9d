package records

import (
	"context"
	"time"

	"github.com/olids-ncl/record-explorer/pkg/common/logger"
	"github.com/olids-ncl/record-explorer/pkg/common/models"
	"github.com/olids-ncl/record-explorer/pkg/observability/metrics"
)

type store interface {
	GetObservations(ctx context.Context, personID string, f models.RecordFilter, limit int) ([]models.Observation, error)
	GetObservationSummary(ctx context.Context, personID string) (models.ObservationSummary, error)
	GetMedications(ctx context.Context, personID string, f models.RecordFilter, limit int) ([]models.Medication, error)
	GetMedicationStatusFields(ctx context.Context, personID string) ([]models.Medication, error)
	GetMedicationAggregate(ctx context.Context, personID string) (models.ObservationSummary, error)
	GetAppointments(ctx context.Context, personID string, f models.RecordFilter, includeFuture bool, now time.Time, limit int) ([]models.Appointment, error)
	GetAppointmentSummary(ctx context.Context, personID string, last12Cutoff time.Time) (models.AppointmentSummary, error)
}

type identifierResolver interface {
	ResolveNaturalID(ctx context.Context, skPatientID int64) (string, error)
}

// Service retrieves clinical records by surrogate key. Query failures are
// logged and surfaced as empty results, matching the data layer contract that
// callers cannot distinguish "failed" from "empty". The row ceiling applies
// to every list retrieval; summaries are uncapped.
type Service struct {
	repo     store
	patients identifierResolver
	maxRows  int
	now      func() time.Time
}

func NewService(repo store, patients identifierResolver, maxRows int) *Service {
	return &Service{repo: repo, patients: patients, maxRows: maxRows, now: time.Now}
}

// Observations returns observations filtered by date range and free-text
// concept search.
func (s *Service) Observations(ctx context.Context, skPatientID int64, f models.RecordFilter) []models.Observation {
	personID, err := s.patients.ResolveNaturalID(ctx, skPatientID)
	if err != nil {
		return []models.Observation{}
	}

	metrics.IncQuery()
	rows, err := s.repo.GetObservations(ctx, personID, f, s.maxRows)
	if err != nil {
		metrics.IncQueryFailure()
		logger.Log.WithError(err).WithField("person_id", personID).Warn("Error loading observations")
		return []models.Observation{}
	}
	return clipObservations(rows, s.maxRows)
}

// ObservationSummary aggregates the whole observation record.
func (s *Service) ObservationSummary(ctx context.Context, skPatientID int64) models.ObservationSummary {
	personID, err := s.patients.ResolveNaturalID(ctx, skPatientID)
	if err != nil {
		return models.ObservationSummary{}
	}

	metrics.IncQuery()
	summary, err := s.repo.GetObservationSummary(ctx, personID)
	if err != nil {
		metrics.IncQueryFailure()
		logger.Log.WithError(err).WithField("person_id", personID).Warn("Error loading observation summary")
		return models.ObservationSummary{}
	}
	return summary
}

// Medications returns medication orders with their derived status. With
// currentOnly set, rows whose status is not Current are dropped after
// derivation, so filtering and display can never disagree.
func (s *Service) Medications(ctx context.Context, skPatientID int64, f models.RecordFilter, currentOnly bool) []models.Medication {
	personID, err := s.patients.ResolveNaturalID(ctx, skPatientID)
	if err != nil {
		return []models.Medication{}
	}

	metrics.IncQuery()
	rows, err := s.repo.GetMedications(ctx, personID, f, s.maxRows)
	if err != nil {
		metrics.IncQueryFailure()
		logger.Log.WithError(err).WithField("person_id", personID).Warn("Error loading medications")
		return []models.Medication{}
	}

	now := s.now()
	out := make([]models.Medication, 0, len(rows))
	for _, m := range rows {
		m.Status = DeriveMedicationStatusAt(statusInput(m), now)
		if currentOnly && m.Status != models.StatusCurrent {
			continue
		}
		out = append(out, m)
	}
	if len(out) > s.maxRows {
		metrics.IncTruncated()
		out = out[:s.maxRows]
	}
	return out
}

// MedicationSummary aggregates the whole medication record. The current count
// runs the same status rules as row display.
func (s *Service) MedicationSummary(ctx context.Context, skPatientID int64) models.MedicationSummary {
	personID, err := s.patients.ResolveNaturalID(ctx, skPatientID)
	if err != nil {
		return models.MedicationSummary{}
	}

	metrics.IncQuery()
	agg, err := s.repo.GetMedicationAggregate(ctx, personID)
	if err != nil {
		metrics.IncQueryFailure()
		logger.Log.WithError(err).WithField("person_id", personID).Warn("Error loading medication summary")
		return models.MedicationSummary{}
	}

	metrics.IncQuery()
	statusRows, err := s.repo.GetMedicationStatusFields(ctx, personID)
	if err != nil {
		metrics.IncQueryFailure()
		logger.Log.WithError(err).WithField("person_id", personID).Warn("Error deriving current medications")
		statusRows = nil
	}

	now := s.now()
	current := 0
	for _, m := range statusRows {
		if DeriveMedicationStatusAt(statusInput(m), now) == models.StatusCurrent {
			current++
		}
	}

	return models.MedicationSummary{
		Total:          agg.Total,
		Current:        current,
		EarliestDate:   agg.EarliestDate,
		MostRecentDate: agg.MostRecentDate,
	}
}

// Appointments returns appointments, each tagged with whether it starts
// strictly after the current date. With includeFuture set, upcoming
// appointments are returned regardless of the date range.
func (s *Service) Appointments(ctx context.Context, skPatientID int64, f models.RecordFilter, includeFuture bool) []models.Appointment {
	personID, err := s.patients.ResolveNaturalID(ctx, skPatientID)
	if err != nil {
		return []models.Appointment{}
	}

	now := s.now()
	metrics.IncQuery()
	rows, err := s.repo.GetAppointments(ctx, personID, f, includeFuture, now, s.maxRows)
	if err != nil {
		metrics.IncQueryFailure()
		logger.Log.WithError(err).WithField("person_id", personID).Warn("Error loading appointments")
		return []models.Appointment{}
	}

	today := dateOnly(now)
	for i := range rows {
		if rows[i].StartDate != nil {
			rows[i].IsFuture = dateOnly(*rows[i].StartDate).After(today)
		}
	}
	if len(rows) > s.maxRows {
		metrics.IncTruncated()
		rows = rows[:s.maxRows]
	}
	if rows == nil {
		rows = []models.Appointment{}
	}
	return rows
}

// AppointmentSummary aggregates the whole appointment record.
func (s *Service) AppointmentSummary(ctx context.Context, skPatientID int64) models.AppointmentSummary {
	personID, err := s.patients.ResolveNaturalID(ctx, skPatientID)
	if err != nil {
		return models.AppointmentSummary{}
	}

	cutoff := dateOnly(s.now()).AddDate(0, 0, -365)
	metrics.IncQuery()
	summary, err := s.repo.GetAppointmentSummary(ctx, personID, cutoff)
	if err != nil {
		metrics.IncQueryFailure()
		logger.Log.WithError(err).WithField("person_id", personID).Warn("Error loading appointment summary")
		return models.AppointmentSummary{}
	}
	return summary
}

func clipObservations(rows []models.Observation, max int) []models.Observation {
	if rows == nil {
		return []models.Observation{}
	}
	if len(rows) > max {
		metrics.IncTruncated()
		rows = rows[:max]
	}
	return rows
}
