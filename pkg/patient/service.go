package patient

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/olids-ncl/record-explorer/pkg/common/logger"
	"github.com/olids-ncl/record-explorer/pkg/common/models"
	"github.com/olids-ncl/record-explorer/pkg/observability/metrics"
)

type store interface {
	SearchByEitherKey(ctx context.Context, naturalID string, skPatientID int64) ([]models.PatientSummary, error)
	SearchByNaturalID(ctx context.Context, naturalID string) ([]models.PatientSummary, error)
	GetDemographics(ctx context.Context, skPatientID int64) (*models.PatientDemographics, error)
	ResolveNaturalID(ctx context.Context, skPatientID int64) (string, error)
	GetRegistrationHistory(ctx context.Context, personID string) ([]models.RegistrationPeriod, error)
	GetConditionRegister(ctx context.Context, personID string) ([]models.ConditionRegisterEntry, error)
}

type Service struct {
	repo store
}

func NewService(repo store) *Service {
	return &Service{repo: repo}
}

// Search looks a patient up by either identifier. A term that parses as an
// integer is matched against the surrogate key as well as the natural
// identifier; anything else matches the natural identifier only. An empty
// term or a failed query yields an empty result, never an error.
func (s *Service) Search(ctx context.Context, term string) []models.PatientSummary {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.PatientSummary{}
	}

	metrics.IncPatientSearch()
	metrics.IncQuery()

	var (
		rows []models.PatientSummary
		err  error
	)
	if sk, parseErr := strconv.ParseInt(term, 10, 64); parseErr == nil {
		rows, err = s.repo.SearchByEitherKey(ctx, term, sk)
	} else {
		rows, err = s.repo.SearchByNaturalID(ctx, term)
	}
	if err != nil {
		metrics.IncQueryFailure()
		logger.Log.WithError(err).WithField("term", term).Warn("Patient search failed")
		return []models.PatientSummary{}
	}
	if rows == nil {
		rows = []models.PatientSummary{}
	}
	return rows
}

// GetDemographics returns the full demographic row for a surrogate key, or
// ErrPatientNotFound. A failed query is reported the same way as a missing
// patient; the caller cannot tell them apart.
func (s *Service) GetDemographics(ctx context.Context, skPatientID int64) (*models.PatientDemographics, error) {
	metrics.IncQuery()
	row, err := s.repo.GetDemographics(ctx, skPatientID)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			metrics.IncPatientNotFound()
			return nil, ErrPatientNotFound
		}
		metrics.IncQueryFailure()
		logger.Log.WithError(err).WithField("sk_patient_id", skPatientID).Warn("Failed to load patient demographics")
		return nil, ErrPatientNotFound
	}
	return row, nil
}

// GetRegistrationHistory resolves the natural identifier and returns all
// registration periods, most recent first.
func (s *Service) GetRegistrationHistory(ctx context.Context, skPatientID int64) []models.RegistrationPeriod {
	personID, ok := s.resolve(ctx, skPatientID)
	if !ok {
		return []models.RegistrationPeriod{}
	}

	metrics.IncQuery()
	rows, err := s.repo.GetRegistrationHistory(ctx, personID)
	if err != nil {
		metrics.IncQueryFailure()
		logger.Log.WithError(err).WithField("person_id", personID).Warn("Could not load registration history")
		return []models.RegistrationPeriod{}
	}
	if rows == nil {
		rows = []models.RegistrationPeriod{}
	}
	return rows
}

// GetConditionRegister returns the on-register long-term conditions for a
// patient.
func (s *Service) GetConditionRegister(ctx context.Context, skPatientID int64) []models.ConditionRegisterEntry {
	personID, ok := s.resolve(ctx, skPatientID)
	if !ok {
		return []models.ConditionRegisterEntry{}
	}

	metrics.IncQuery()
	rows, err := s.repo.GetConditionRegister(ctx, personID)
	if err != nil {
		metrics.IncQueryFailure()
		logger.Log.WithError(err).WithField("person_id", personID).Warn("Could not load condition register")
		return []models.ConditionRegisterEntry{}
	}
	if rows == nil {
		rows = []models.ConditionRegisterEntry{}
	}
	return rows
}

// ResolveNaturalID exposes surrogate-to-natural resolution for the record
// services, which query by natural identifier.
func (s *Service) ResolveNaturalID(ctx context.Context, skPatientID int64) (string, error) {
	metrics.IncQuery()
	personID, err := s.repo.ResolveNaturalID(ctx, skPatientID)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			metrics.IncPatientNotFound()
			return "", ErrPatientNotFound
		}
		metrics.IncQueryFailure()
		logger.Log.WithError(err).WithField("sk_patient_id", skPatientID).Warn("Failed to resolve patient identifier")
		return "", ErrPatientNotFound
	}
	return personID, nil
}

func (s *Service) resolve(ctx context.Context, skPatientID int64) (string, bool) {
	personID, err := s.ResolveNaturalID(ctx, skPatientID)
	if err != nil {
		return "", false
	}
	return personID, true
}
