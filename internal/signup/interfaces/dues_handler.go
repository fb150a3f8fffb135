package interfaces

import (
	"github.com/sebuszqo/UnionSignup/internal/signup/domain"
	"net/http"
)

type DuesHandler struct {
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string)
}

func NewDuesHandler(
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string),
) *DuesHandler {
	if respondJSON == nil || respondError == nil {
		panic("Response functions must not be nil")
	}
	return &DuesHandler{respondJSON: respondJSON, respondError: respondError}
}

// HandleDues never fails: anything non-numeric is $0.
func (h *DuesHandler) HandleDues(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	h.respondJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"dues":   domain.FormatDues(query.Get(domain.FieldTotalCompensation), query.Get(domain.FieldCurrency)),
	})
}

func (h *DuesHandler) HandleCompensation(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	total, ok := domain.AnnualCompensation(query.Get(domain.FieldHourlyRate), query.Get(domain.FieldHoursPerWeek))
	if !ok {
		h.respondError(w, http.StatusBadRequest, "hourly-rate and hours-per-week must be numbers")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{
		"status":                      "success",
		domain.FieldTotalCompensation: total,
		"dues":                        domain.FormatDues(total, query.Get(domain.FieldCurrency)),
	})
}
