package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// AllTime is the sentinel in a date range option table meaning "no date
// filter". A label that is missing from the table behaves the same way.
const AllTime = 0

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Warehouse
	WarehouseHost     string
	WarehousePort     string
	WarehouseUser     string
	WarehousePassword string
	WarehouseDB       string
	WarehouseSSLMode  string

	// Every list query is capped at MaxRecordRows; aggregates are not.
	MaxRecordRows int

	Tables Tables

	// Two independent option tables: the general one drives observation and
	// appointment filters, the medication one drives the past-medications
	// view. They are configured separately and are not interchangeable.
	DateRangeOptions           map[string]int
	MedicationDateRangeOptions map[string]int

	// Gateway
	RateLimitRPS   int
	RateLimitBurst int
}

// Tables holds the schema-qualified warehouse table locations. The schema is
// external and fixed; locations are pure configuration.
type Tables struct {
	DimPerson               string `yaml:"dim_person"`
	DimPersonHistorical     string `yaml:"dim_person_historical"`
	LTCSummary              string `yaml:"ltc_summary"`
	Observation             string `yaml:"observation"`
	MedicationOrder         string `yaml:"medication_order"`
	MedicationStatement     string `yaml:"medication_statement"`
	Appointment             string `yaml:"appointment"`
	AppointmentPractitioner string `yaml:"appointment_practitioner"`
	Practitioner            string `yaml:"practitioner"`
}

type overlay struct {
	Tables                     Tables         `yaml:"tables"`
	DateRangeOptions           map[string]int `yaml:"date_range_options"`
	MedicationDateRangeOptions map[string]int `yaml:"medication_date_range_options"`
}

func Load() *Config {
	cfg := &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 60*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1*1024*1024)),

		WarehouseHost:     getEnv("WAREHOUSE_HOST", "localhost"),
		WarehousePort:     getEnv("WAREHOUSE_PORT", "5432"),
		WarehouseUser:     getEnv("WAREHOUSE_USER", "olids_reader"),
		WarehousePassword: getEnv("WAREHOUSE_PASSWORD", ""),
		WarehouseDB:       getEnv("WAREHOUSE_DB", "olids"),
		WarehouseSSLMode:  getEnv("WAREHOUSE_SSLMODE", "disable"),

		MaxRecordRows: getIntEnv("MAX_RECORD_ROWS", 10000),

		Tables: Tables{
			DimPerson:               getEnv("TABLE_DIM_PERSON", "olids_demographics.dim_person_demographics"),
			DimPersonHistorical:     getEnv("TABLE_DIM_PERSON_HISTORICAL", "olids_demographics.dim_person_demographics_historical"),
			LTCSummary:              getEnv("TABLE_LTC_SUMMARY", "olids_demographics.dim_person_ltc_summary"),
			Observation:             getEnv("TABLE_OBSERVATION", "olids_staging.stg_olids_observation"),
			MedicationOrder:         getEnv("TABLE_MEDICATION_ORDER", "olids_staging.stg_olids_medication_order"),
			MedicationStatement:     getEnv("TABLE_MEDICATION_STATEMENT", "olids_staging.stg_olids_medication_statement"),
			Appointment:             getEnv("TABLE_APPOINTMENT", "olids_staging.stg_olids_appointment"),
			AppointmentPractitioner: getEnv("TABLE_APPOINTMENT_PRACTITIONER", "olids_staging.stg_olids_appointment_practitioner"),
			Practitioner:            getEnv("TABLE_PRACTITIONER", "olids_staging.stg_olids_practitioner"),
		},

		DateRangeOptions: map[string]int{
			"Last 30 days":  30,
			"Last 90 days":  90,
			"Last 365 days": 365,
			"All time":      AllTime,
		},
		MedicationDateRangeOptions: map[string]int{
			"Last 3 months":  90,
			"Last 6 months":  180,
			"Last 12 months": 365,
			"Last 2 years":   730,
			"All time":       AllTime,
		},

		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),
	}

	if path := os.Getenv("EXPLORER_CONFIG_FILE"); path != "" {
		// Overlay errors are non-fatal: the env defaults above always
		// produce a runnable configuration.
		_ = cfg.applyOverlay(path)
	}

	return cfg
}

func (c *Config) applyOverlay(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var o overlay
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return err
	}
	mergeTables(&c.Tables, o.Tables)
	if len(o.DateRangeOptions) > 0 {
		c.DateRangeOptions = o.DateRangeOptions
	}
	if len(o.MedicationDateRangeOptions) > 0 {
		c.MedicationDateRangeOptions = o.MedicationDateRangeOptions
	}
	return nil
}

func mergeTables(dst *Tables, src Tables) {
	if src.DimPerson != "" {
		dst.DimPerson = src.DimPerson
	}
	if src.DimPersonHistorical != "" {
		dst.DimPersonHistorical = src.DimPersonHistorical
	}
	if src.LTCSummary != "" {
		dst.LTCSummary = src.LTCSummary
	}
	if src.Observation != "" {
		dst.Observation = src.Observation
	}
	if src.MedicationOrder != "" {
		dst.MedicationOrder = src.MedicationOrder
	}
	if src.MedicationStatement != "" {
		dst.MedicationStatement = src.MedicationStatement
	}
	if src.Appointment != "" {
		dst.Appointment = src.Appointment
	}
	if src.AppointmentPractitioner != "" {
		dst.AppointmentPractitioner = src.AppointmentPractitioner
	}
	if src.Practitioner != "" {
		dst.Practitioner = src.Practitioner
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
