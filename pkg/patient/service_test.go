package patient

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/olids-ncl/record-explorer/pkg/common/logger"
	"github.com/olids-ncl/record-explorer/pkg/common/models"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type fakeStore struct {
	summaries    []models.PatientSummary
	demographics *models.PatientDemographics
	personID     string
	history      []models.RegistrationPeriod
	conditions   []models.ConditionRegisterEntry
	err          error

	eitherKeyCalls int
	naturalCalls   int
	lastNaturalID  string
	lastSK         int64
}

func (f *fakeStore) SearchByEitherKey(ctx context.Context, naturalID string, sk int64) ([]models.PatientSummary, error) {
	f.eitherKeyCalls++
	f.lastNaturalID, f.lastSK = naturalID, sk
	return f.summaries, f.err
}

func (f *fakeStore) SearchByNaturalID(ctx context.Context, naturalID string) ([]models.PatientSummary, error) {
	f.naturalCalls++
	f.lastNaturalID = naturalID
	return f.summaries, f.err
}

func (f *fakeStore) GetDemographics(ctx context.Context, sk int64) (*models.PatientDemographics, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.demographics, nil
}

func (f *fakeStore) ResolveNaturalID(ctx context.Context, sk int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.personID == "" {
		return "", ErrPatientNotFound
	}
	return f.personID, nil
}

func (f *fakeStore) GetRegistrationHistory(ctx context.Context, personID string) ([]models.RegistrationPeriod, error) {
	return f.history, nil
}

func (f *fakeStore) GetConditionRegister(ctx context.Context, personID string) ([]models.ConditionRegisterEntry, error) {
	return f.conditions, nil
}

func TestSearchNumericTermMatchesEitherKey(t *testing.T) {
	store := &fakeStore{summaries: []models.PatientSummary{{PersonID: "P001"}}}
	svc := NewService(store)

	rows := svc.Search(context.Background(), "12345")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if store.eitherKeyCalls != 1 || store.naturalCalls != 0 {
		t.Fatalf("numeric term must take the either-key branch, got either=%d natural=%d",
			store.eitherKeyCalls, store.naturalCalls)
	}
	if store.lastNaturalID != "12345" || store.lastSK != 12345 {
		t.Fatalf("expected term bound to both keys, got %q / %d", store.lastNaturalID, store.lastSK)
	}
}

func TestSearchNonNumericTermMatchesNaturalOnly(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	svc.Search(context.Background(), "ABC-123")
	if store.naturalCalls != 1 || store.eitherKeyCalls != 0 {
		t.Fatalf("non-numeric term must take the natural-id branch, got either=%d natural=%d",
			store.eitherKeyCalls, store.naturalCalls)
	}
}

func TestSearchTrimsBeforeClassifying(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	svc.Search(context.Background(), "  42  ")
	if store.eitherKeyCalls != 1 {
		t.Fatal("padded numeric term must still take the either-key branch")
	}
	if store.lastNaturalID != "42" {
		t.Fatalf("expected trimmed term, got %q", store.lastNaturalID)
	}
}

func TestSearchEmptyTermSkipsQuery(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	rows := svc.Search(context.Background(), "   ")
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty slice, got %v", rows)
	}
	if store.eitherKeyCalls+store.naturalCalls != 0 {
		t.Fatal("empty term must not reach the repository")
	}
}

func TestSearchFailureYieldsEmpty(t *testing.T) {
	store := &fakeStore{err: errors.New("warehouse unavailable")}
	svc := NewService(store)

	rows := svc.Search(context.Background(), "P001")
	if rows == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty result on failure, got %d rows", len(rows))
	}
}

func TestGetDemographicsFailureReportsNotFound(t *testing.T) {
	// Query failure and missing patient are indistinguishable to the caller.
	svc := NewService(&fakeStore{err: errors.New("connection reset")})

	_, err := svc.GetDemographics(context.Background(), 42)
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestGetDemographicsPassesRowThrough(t *testing.T) {
	want := &models.PatientDemographics{PersonID: "P001", SKPatientID: 42}
	svc := NewService(&fakeStore{demographics: want})

	got, err := svc.GetDemographics(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PersonID != "P001" {
		t.Fatalf("expected P001, got %s", got.PersonID)
	}
}

func TestHistoryForUnknownPatientIsEmpty(t *testing.T) {
	svc := NewService(&fakeStore{history: []models.RegistrationPeriod{{PracticeName: strPtr("The Surgery")}}})

	rows := svc.GetRegistrationHistory(context.Background(), 42)
	if len(rows) != 0 {
		t.Fatalf("unknown patient must yield empty history, got %d rows", len(rows))
	}
}

func TestHistoryAndConditionsResolveFirst(t *testing.T) {
	store := &fakeStore{
		personID:   "P001",
		history:    []models.RegistrationPeriod{{PracticeName: strPtr("The Surgery")}},
		conditions: []models.ConditionRegisterEntry{{ConditionName: "Asthma"}},
	}
	svc := NewService(store)

	if rows := svc.GetRegistrationHistory(context.Background(), 42); len(rows) != 1 {
		t.Fatalf("expected 1 registration period, got %d", len(rows))
	}
	if rows := svc.GetConditionRegister(context.Background(), 42); len(rows) != 1 {
		t.Fatalf("expected 1 condition, got %d", len(rows))
	}
}

func strPtr(s string) *string { return &s }
