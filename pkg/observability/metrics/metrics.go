package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	queriesTotal     atomic.Int64
	queryFailures    atomic.Int64
	rowsTruncated    atomic.Int64
	patientSearches  atomic.Int64
	patientsNotFound atomic.Int64
)

func IncQuery()           { queriesTotal.Add(1) }
func IncQueryFailure()    { queryFailures.Add(1) }
func IncTruncated()       { rowsTruncated.Add(1) }
func IncPatientSearch()   { patientSearches.Add(1) }
func IncPatientNotFound() { patientsNotFound.Add(1) }

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP olids_explorer_warehouse_queries_total Number of warehouse queries executed since process start.\n")
	fmt.Fprintf(w, "# TYPE olids_explorer_warehouse_queries_total counter\n")
	fmt.Fprintf(w, "olids_explorer_warehouse_queries_total %d\n", queriesTotal.Load())

	fmt.Fprintf(w, "# HELP olids_explorer_warehouse_query_failures_total Number of warehouse queries that failed and were surfaced as empty results.\n")
	fmt.Fprintf(w, "# TYPE olids_explorer_warehouse_query_failures_total counter\n")
	fmt.Fprintf(w, "olids_explorer_warehouse_query_failures_total %d\n", queryFailures.Load())

	fmt.Fprintf(w, "# HELP olids_explorer_result_truncations_total Number of list queries that hit the configured row ceiling.\n")
	fmt.Fprintf(w, "# TYPE olids_explorer_result_truncations_total counter\n")
	fmt.Fprintf(w, "olids_explorer_result_truncations_total %d\n", rowsTruncated.Load())

	fmt.Fprintf(w, "# HELP olids_explorer_patient_searches_total Number of patient search requests handled.\n")
	fmt.Fprintf(w, "# TYPE olids_explorer_patient_searches_total counter\n")
	fmt.Fprintf(w, "olids_explorer_patient_searches_total %d\n", patientSearches.Load())

	fmt.Fprintf(w, "# HELP olids_explorer_patients_not_found_total Number of demographic lookups that found no patient.\n")
	fmt.Fprintf(w, "# TYPE olids_explorer_patients_not_found_total counter\n")
	fmt.Fprintf(w, "olids_explorer_patients_not_found_total %d\n", patientsNotFound.Load())
}
