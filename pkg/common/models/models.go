package models

import "time"

// PatientSummary is a search result row from the demographics dimension.
type PatientSummary struct {
	PersonID             string  `gorm:"column:person_id" json:"person_id"`
	SKPatientID          int64   `gorm:"column:sk_patient_id" json:"sk_patient_id"`
	Age                  *int    `gorm:"column:age" json:"age"`
	Gender               *string `gorm:"column:gender" json:"gender"`
	IsActive             *bool   `gorm:"column:is_active" json:"is_active"`
	IsDeceased           *bool   `gorm:"column:is_deceased" json:"is_deceased"`
	InactiveReason       *string `gorm:"column:inactive_reason" json:"inactive_reason,omitempty"`
	PracticeName         *string `gorm:"column:practice_name" json:"practice_name"`
	PCNName              *string `gorm:"column:pcn_name" json:"pcn_name"`
	EthnicitySubcategory *string `gorm:"column:ethnicity_subcategory" json:"ethnicity_subcategory"`
}

// PatientDemographics is the full current-state demographics row. Exactly one
// row exists per natural identifier.
type PatientDemographics struct {
	PersonID    string `gorm:"column:person_id" json:"person_id"`
	SKPatientID int64  `gorm:"column:sk_patient_id" json:"sk_patient_id"`

	Age                  *int       `gorm:"column:age" json:"age"`
	AgeLifeStage         *string    `gorm:"column:age_life_stage" json:"age_life_stage"`
	BirthDateApprox      *time.Time `gorm:"column:birth_date_approx" json:"birth_date_approx"`
	DeathDateApprox      *time.Time `gorm:"column:death_date_approx" json:"death_date_approx,omitempty"`
	Gender               *string    `gorm:"column:gender" json:"gender"`
	EthnicityCategory    *string    `gorm:"column:ethnicity_category" json:"ethnicity_category"`
	EthnicitySubcategory *string    `gorm:"column:ethnicity_subcategory" json:"ethnicity_subcategory"`
	IsPrimarySchoolAge   *bool      `gorm:"column:is_primary_school_age" json:"is_primary_school_age"`
	IsSecondarySchoolAge *bool      `gorm:"column:is_secondary_school_age" json:"is_secondary_school_age"`

	IsActive       *bool   `gorm:"column:is_active" json:"is_active"`
	IsDeceased     *bool   `gorm:"column:is_deceased" json:"is_deceased"`
	InactiveReason *string `gorm:"column:inactive_reason" json:"inactive_reason,omitempty"`

	PracticeName          *string    `gorm:"column:practice_name" json:"practice_name"`
	PracticeCode          *string    `gorm:"column:practice_code" json:"practice_code"`
	PCNName               *string    `gorm:"column:pcn_name" json:"pcn_name"`
	PCNCode               *string    `gorm:"column:pcn_code" json:"pcn_code"`
	ICBName               *string    `gorm:"column:icb_name" json:"icb_name"`
	RegistrationStartDate *time.Time `gorm:"column:registration_start_date" json:"registration_start_date"`
	RegistrationEndDate   *time.Time `gorm:"column:registration_end_date" json:"registration_end_date,omitempty"`

	BoroughRegistered     *string `gorm:"column:borough_registered" json:"borough_registered"`
	BoroughResident       *string `gorm:"column:borough_resident" json:"borough_resident"`
	ICBResident           *string `gorm:"column:icb_resident" json:"icb_resident"`
	LocalAuthorityName    *string `gorm:"column:local_authority_name" json:"local_authority_name"`
	IsLondonResident      *bool   `gorm:"column:is_london_resident" json:"is_london_resident"`
	NeighbourhoodResident *string `gorm:"column:neighbourhood_resident" json:"neighbourhood_resident"`
	LSOAName              *string `gorm:"column:lsoa_name" json:"lsoa_name"`
	WardName              *string `gorm:"column:ward_name" json:"ward_name"`
	IMDDecile             *int    `gorm:"column:imd_decile" json:"imd_decile"`
	IMDQuintile           *int    `gorm:"column:imd_quintile" json:"imd_quintile"`

	MainLanguage      *string `gorm:"column:main_language" json:"main_language"`
	LanguageType      *string `gorm:"column:language_type" json:"language_type"`
	InterpreterNeeded *bool   `gorm:"column:interpreter_needed" json:"interpreter_needed"`
	InterpreterType   *string `gorm:"column:interpreter_type" json:"interpreter_type,omitempty"`
}

// RegistrationPeriod is one historical registration row. At most one row per
// person carries IsCurrent.
type RegistrationPeriod struct {
	PeriodSequence        int        `gorm:"column:period_sequence" json:"period_sequence"`
	IsCurrent             bool       `gorm:"column:is_current" json:"is_current"`
	IsActive              *bool      `gorm:"column:is_active" json:"is_active"`
	EffectiveStartDate    *time.Time `gorm:"column:effective_start_date" json:"effective_start_date"`
	EffectiveEndDate      *time.Time `gorm:"column:effective_end_date" json:"effective_end_date,omitempty"`
	RegistrationStartDate *time.Time `gorm:"column:registration_start_date" json:"registration_start_date"`
	RegistrationEndDate   *time.Time `gorm:"column:registration_end_date" json:"registration_end_date,omitempty"`
	PracticeName          *string    `gorm:"column:practice_name" json:"practice_name"`
	PracticeCode          *string    `gorm:"column:practice_code" json:"practice_code"`
	PCNName               *string    `gorm:"column:pcn_name" json:"pcn_name"`
	EthnicitySubcategory  *string    `gorm:"column:ethnicity_subcategory" json:"ethnicity_subcategory"`
	BoroughRegistered     *string    `gorm:"column:borough_registered" json:"borough_registered"`
	BoroughResident       *string    `gorm:"column:borough_resident" json:"borough_resident"`
	LocalAuthorityName    *string    `gorm:"column:local_authority_name" json:"local_authority_name"`
}

// ConditionRegisterEntry is a long-term condition summary row.
type ConditionRegisterEntry struct {
	ConditionCode         string     `gorm:"column:condition_code" json:"condition_code"`
	ConditionName         string     `gorm:"column:condition_name" json:"condition_name"`
	ClinicalDomain        *string    `gorm:"column:clinical_domain" json:"clinical_domain"`
	IsOnRegister          bool       `gorm:"column:is_on_register" json:"is_on_register"`
	IsQOF                 bool       `gorm:"column:is_qof" json:"is_qof"`
	EarliestDiagnosisDate *time.Time `gorm:"column:earliest_diagnosis_date" json:"earliest_diagnosis_date"`
	LatestDiagnosisDate   *time.Time `gorm:"column:latest_diagnosis_date" json:"latest_diagnosis_date"`
}

// Observation is a single clinical measurement or finding. Append-only
// upstream; never written by this service.
type Observation struct {
	ID                    string     `gorm:"column:id" json:"id"`
	ClinicalEffectiveDate *time.Time `gorm:"column:clinical_effective_date" json:"clinical_effective_date"`
	MappedConceptCode     *string    `gorm:"column:mapped_concept_code" json:"mapped_concept_code"`
	MappedConceptDisplay  *string    `gorm:"column:mapped_concept_display" json:"mapped_concept_display"`
	ResultValue           *float64   `gorm:"column:result_value" json:"result_value,omitempty"`
	ResultText            *string    `gorm:"column:result_text" json:"result_text,omitempty"`
	ResultUnitDisplay     *string    `gorm:"column:result_unit_display" json:"result_unit_display,omitempty"`
}

type ObservationSummary struct {
	Total          int        `gorm:"column:total" json:"total"`
	EarliestDate   *time.Time `gorm:"column:earliest_date" json:"earliest_date"`
	MostRecentDate *time.Time `gorm:"column:most_recent_date" json:"most_recent_date"`
}

// MedicationStatus is the derived display status of a medication order.
type MedicationStatus string

const (
	StatusCurrent   MedicationStatus = "Current"
	StatusCancelled MedicationStatus = "Cancelled"
	StatusExpired   MedicationStatus = "Expired"
	StatusPast      MedicationStatus = "Past"
	StatusUnknown   MedicationStatus = "Unknown"
)

// Medication is a prescribing event joined with its parent statement. The
// statement fields are nil when the order has no statement link.
type Medication struct {
	ID                     string     `gorm:"column:id" json:"id"`
	ClinicalEffectiveDate  *time.Time `gorm:"column:clinical_effective_date" json:"clinical_effective_date"`
	MappedConceptCode      *string    `gorm:"column:mapped_concept_code" json:"mapped_concept_code"`
	MappedConceptDisplay   *string    `gorm:"column:mapped_concept_display" json:"mapped_concept_display"`
	Dose                   *string    `gorm:"column:dose" json:"dose,omitempty"`
	QuantityValue          *float64   `gorm:"column:quantity_value" json:"quantity_value,omitempty"`
	QuantityUnit           *string    `gorm:"column:quantity_unit" json:"quantity_unit,omitempty"`
	DurationDays           *float64   `gorm:"column:duration_days" json:"duration_days,omitempty"`
	EstimatedCost          *float64   `gorm:"column:estimated_cost" json:"estimated_cost,omitempty"`
	IssueMethodDescription *string    `gorm:"column:issue_method_description" json:"issue_method_description,omitempty"`
	BNFReference           *string    `gorm:"column:bnf_reference" json:"bnf_reference,omitempty"`

	StatementIsActive    *bool      `gorm:"column:statement_is_active" json:"statement_is_active,omitempty"`
	CancellationDate     *time.Time `gorm:"column:cancellation_date" json:"cancellation_date,omitempty"`
	ExpiryDate           *time.Time `gorm:"column:expiry_date" json:"expiry_date,omitempty"`
	StatementIssueMethod *string    `gorm:"column:statement_issue_method" json:"statement_issue_method,omitempty"`
	AuthorisationType    *string    `gorm:"column:authorisation_type" json:"authorisation_type,omitempty"`

	// Derived, never read from the warehouse.
	Status MedicationStatus `gorm:"-" json:"status"`
}

type MedicationSummary struct {
	Total          int        `json:"total"`
	Current        int        `json:"current"`
	EarliestDate   *time.Time `json:"earliest_date"`
	MostRecentDate *time.Time `json:"most_recent_date"`
}

// Appointment is a scheduled encounter. IsFuture is evaluated against the
// current date at query time.
type Appointment struct {
	ID                       string     `gorm:"column:id" json:"id"`
	StartDate                *time.Time `gorm:"column:start_date" json:"start_date"`
	AppointmentStatus        *string    `gorm:"column:appointment_status" json:"appointment_status"`
	ContactMode              *string    `gorm:"column:contact_mode" json:"contact_mode"`
	NationalSlotCategoryName *string    `gorm:"column:national_slot_category_name" json:"national_slot_category_name"`
	PlannedDuration          *int       `gorm:"column:planned_duration" json:"planned_duration,omitempty"`
	ActualDuration           *int       `gorm:"column:actual_duration" json:"actual_duration,omitempty"`
	PatientWait              *int       `gorm:"column:patient_wait" json:"patient_wait,omitempty"`
	PractitionerLastName     *string    `gorm:"column:practitioner_last_name" json:"practitioner_last_name,omitempty"`
	PractitionerFirstName    *string    `gorm:"column:practitioner_first_name" json:"practitioner_first_name,omitempty"`
	PractitionerTitle        *string    `gorm:"column:practitioner_title" json:"practitioner_title,omitempty"`

	// Derived, never read from the warehouse.
	IsFuture bool `gorm:"-" json:"is_future"`
}

type AppointmentSummary struct {
	Total          int        `gorm:"column:total" json:"total"`
	Last12Months   int        `gorm:"column:last_12_months" json:"last_12_months"`
	EarliestDate   *time.Time `gorm:"column:earliest_date" json:"earliest_date"`
	MostRecentDate *time.Time `gorm:"column:most_recent_date" json:"most_recent_date"`
}

// RecordFilter carries the optional date range and free-text filters shared
// by the clinical record retrievals. Date bounds are inclusive.
type RecordFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Search   string
}
