package explorer

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/olids-ncl/record-explorer/pkg/common/config"
	"github.com/olids-ncl/record-explorer/pkg/common/models"
	"github.com/olids-ncl/record-explorer/pkg/format"
	"github.com/olids-ncl/record-explorer/pkg/patient"
	"github.com/olids-ncl/record-explorer/pkg/records"
)

// Handler binds the patient and record services to the JSON API. Failed
// warehouse queries surface as empty item lists, not errors; only a bad
// identifier or an unknown patient changes the status code.
type Handler struct {
	patients *patient.Service
	records  *records.Service
	cfg      *config.Config
}

func NewHandler(patients *patient.Service, recordSvc *records.Service, cfg *config.Config) *Handler {
	return &Handler{patients: patients, records: recordSvc, cfg: cfg}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/patients/search", h.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id}", h.handleDemographics).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id}/summary", h.handlePatientSummary).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id}/registration-history", h.handleRegistrationHistory).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id}/conditions", h.handleConditions).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id}/observations", h.handleObservations).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id}/observations/summary", h.handleObservationSummary).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id}/medications", h.handleMedications).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id}/medications/summary", h.handleMedicationSummary).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id}/appointments", h.handleAppointments).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id}/appointments/summary", h.handleAppointmentSummary).Methods(http.MethodGet)
	r.HandleFunc("/date-ranges", h.handleDateRanges).Methods(http.MethodGet)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	results := h.patients.Search(r.Context(), term)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": results,
		"count": len(results),
	})
}

func (h *Handler) handleDemographics(w http.ResponseWriter, r *http.Request) {
	sk, ok := parsePatientID(w, r)
	if !ok {
		return
	}
	demo, err := h.patients.GetDemographics(r.Context(), sk)
	if err != nil {
		http.Error(w, "patient not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"patient":      demo,
		"status_badge": format.StatusBadge(demo.IsActive, demo.IsDeceased, demo.InactiveReason),
	})
}

// handlePatientSummary assembles the summary view: demographics, record
// aggregates, condition register and registration history in one payload.
func (h *Handler) handlePatientSummary(w http.ResponseWriter, r *http.Request) {
	sk, ok := parsePatientID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	demo, err := h.patients.GetDemographics(ctx, sk)
	if err != nil {
		http.Error(w, "patient not found", http.StatusNotFound)
		return
	}

	obsSummary := h.records.ObservationSummary(ctx, sk)
	medSummary := h.records.MedicationSummary(ctx, sk)
	apptSummary := h.records.AppointmentSummary(ctx, sk)
	conditions := h.patients.GetConditionRegister(ctx, sk)
	history := h.patients.GetRegistrationHistory(ctx, sk)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"patient":              demo,
		"status_badge":         format.StatusBadge(demo.IsActive, demo.IsDeceased, demo.InactiveReason),
		"observation_summary":  obsSummary,
		"medication_summary":   medSummary,
		"appointment_summary":  apptSummary,
		"conditions":           conditions,
		"registration_history": history,
	})
}

func (h *Handler) handleRegistrationHistory(w http.ResponseWriter, r *http.Request) {
	sk, ok := parsePatientID(w, r)
	if !ok {
		return
	}
	history := h.patients.GetRegistrationHistory(r.Context(), sk)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": history,
		"count": len(history),
	})
}

func (h *Handler) handleConditions(w http.ResponseWriter, r *http.Request) {
	sk, ok := parsePatientID(w, r)
	if !ok {
		return
	}
	conditions := h.patients.GetConditionRegister(r.Context(), sk)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": conditions,
		"count": len(conditions),
	})
}

type observationView struct {
	models.Observation
	DateDisplay  string `json:"date_display"`
	ValueDisplay string `json:"value_display"`
}

func (h *Handler) handleObservations(w http.ResponseWriter, r *http.Request) {
	sk, ok := parsePatientID(w, r)
	if !ok {
		return
	}
	filter := h.parseFilter(r, h.cfg.DateRangeOptions)
	rows := h.records.Observations(r.Context(), sk, filter)

	items := make([]observationView, 0, len(rows))
	for _, o := range rows {
		view := observationView{
			Observation: o,
			DateDisplay: format.Date(o.ClinicalEffectiveDate),
		}
		if o.ResultValue != nil {
			view.ValueDisplay = format.ValueWithUnit(o.ResultValue, o.ResultUnitDisplay)
		} else {
			view.ValueDisplay = format.SafeString(o.ResultText)
		}
		items = append(items, view)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
		"limit": h.cfg.MaxRecordRows,
	})
}

func (h *Handler) handleObservationSummary(w http.ResponseWriter, r *http.Request) {
	sk, ok := parsePatientID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.records.ObservationSummary(r.Context(), sk))
}

type medicationView struct {
	models.Medication
	DateDisplay     string `json:"date_display"`
	TypeDisplay     string `json:"type_display"`
	QuantityDisplay string `json:"quantity_display"`
	DurationDisplay string `json:"duration_display,omitempty"`
}

func (h *Handler) handleMedications(w http.ResponseWriter, r *http.Request) {
	sk, ok := parsePatientID(w, r)
	if !ok {
		return
	}
	filter := h.parseFilter(r, h.cfg.MedicationDateRangeOptions)
	currentOnly := r.URL.Query().Get("current") == "true"
	rows := h.records.Medications(r.Context(), sk, filter, currentOnly)

	items := make([]medicationView, 0, len(rows))
	for _, m := range rows {
		view := medicationView{
			Medication:      m,
			DateDisplay:     format.Date(m.ClinicalEffectiveDate),
			QuantityDisplay: format.ValueWithUnit(m.QuantityValue, m.QuantityUnit),
		}
		// Prefer the order's issue method, fall back to the statement's.
		if m.IssueMethodDescription != nil && *m.IssueMethodDescription != "" {
			view.TypeDisplay = *m.IssueMethodDescription
		} else {
			view.TypeDisplay = format.SafeString(m.StatementIssueMethod)
		}
		if m.DurationDays != nil {
			view.DurationDisplay = strconv.Itoa(int(*m.DurationDays)) + " days"
		}
		items = append(items, view)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
		"limit": h.cfg.MaxRecordRows,
	})
}

func (h *Handler) handleMedicationSummary(w http.ResponseWriter, r *http.Request) {
	sk, ok := parsePatientID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.records.MedicationSummary(r.Context(), sk))
}

type appointmentView struct {
	models.Appointment
	DateDisplay         string `json:"date_display"`
	StatusDisplay       string `json:"status_display"`
	SlotDisplay         string `json:"slot_display"`
	DurationDisplay     string `json:"duration_display"`
	PractitionerDisplay string `json:"practitioner_display"`
}

func (h *Handler) handleAppointments(w http.ResponseWriter, r *http.Request) {
	sk, ok := parsePatientID(w, r)
	if !ok {
		return
	}
	filter := h.parseFilter(r, h.cfg.DateRangeOptions)
	includeFuture := r.URL.Query().Get("include_future") == "true"
	rows := h.records.Appointments(r.Context(), sk, filter, includeFuture)

	items := make([]appointmentView, 0, len(rows))
	for _, a := range rows {
		items = append(items, appointmentView{
			Appointment:         a,
			DateDisplay:         format.DateTime(a.StartDate),
			StatusDisplay:       format.SafeString(a.AppointmentStatus),
			SlotDisplay:         format.SafeString(a.NationalSlotCategoryName),
			DurationDisplay:     format.Duration(a.PlannedDuration),
			PractitionerDisplay: format.PractitionerName(a.PractitionerLastName, a.PractitionerFirstName, a.PractitionerTitle),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
		"limit": h.cfg.MaxRecordRows,
	})
}

func (h *Handler) handleAppointmentSummary(w http.ResponseWriter, r *http.Request) {
	sk, ok := parsePatientID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.records.AppointmentSummary(r.Context(), sk))
}

func (h *Handler) handleDateRanges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date_ranges":            optionLabels(h.cfg.DateRangeOptions),
		"medication_date_ranges": optionLabels(h.cfg.MedicationDateRangeOptions),
	})
}

// parseFilter resolves the filter query params. An explicit from/to pair
// overrides the named range; the range label is resolved against the option
// table belonging to the view.
func (h *Handler) parseFilter(r *http.Request, table map[string]int) models.RecordFilter {
	q := r.URL.Query()
	filter := models.RecordFilter{Search: q.Get("search")}

	if label := q.Get("range"); label != "" {
		filter.DateFrom, filter.DateTo = records.ResolveDateRange(label, table)
	}
	if from := q.Get("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.DateFrom = &t
		}
	}
	if to := q.Get("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filter.DateTo = &t
		}
	}
	return filter
}

func parsePatientID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	sk, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return 0, false
	}
	return sk, true
}

func optionLabels(table map[string]int) []map[string]interface{} {
	labels := make([]map[string]interface{}, 0, len(table))
	for label, days := range table {
		labels = append(labels, map[string]interface{}{"label": label, "days": days})
	}
	return labels
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
