package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/renzoproject/workforce/internal/employee/domain"
	"github.com/renzoproject/workforce/internal/employee/service"
	"github.com/renzoproject/workforce/pkg/httpx"
	"github.com/renzoproject/workforce/pkg/slogx"
)

// EmployeeHandler serves the employee CRUD API.
type EmployeeHandler struct {
	EmployeeService *service.EmployeeService
}

func (h *EmployeeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var e domain.Employee
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.EmployeeService.Create(r.Context(), e, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, created)
}

func (h *EmployeeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	e, err := h.EmployeeService.Get(r.Context(), r.PathValue("employeeId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, e)
}

func (h *EmployeeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.EmployeeService.List(r.Context(), pageRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *EmployeeHandler) HandleListSorted(w http.ResponseWriter, r *http.Request) {
	descending := strings.EqualFold(r.URL.Query().Get("direction"), "DESC")
	page, err := h.EmployeeService.ListSorted(r.Context(), pageRequest(r), r.URL.Query().Get("sortBy"), descending)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *EmployeeHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	page, err := h.EmployeeService.SearchByName(r.Context(), r.URL.Query().Get("name"), pageRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *EmployeeHandler) HandleByJobTitle(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("jobTitle")
	if title == "" {
		title = r.URL.Query().Get("title")
	}
	page, err := h.EmployeeService.ListByJobTitle(r.Context(), title, pageRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *EmployeeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var e domain.Employee
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.EmployeeService.Update(r.Context(), r.PathValue("employeeId"), e, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, updated)
}

func (h *EmployeeHandler) HandlePatchAddress(w http.ResponseWriter, r *http.Request) {
	var addr domain.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.EmployeeService.UpdateAddress(r.Context(), r.PathValue("employeeId"), addr, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, updated)
}

func (h *EmployeeHandler) HandlePatchContact(w http.ResponseWriter, r *http.Request) {
	var ci domain.ContactInformation
	if err := json.NewDecoder(r.Body).Decode(&ci); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.EmployeeService.UpdateContactInformation(r.Context(), r.PathValue("employeeId"), ci, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, updated)
}

func (h *EmployeeHandler) HandlePatchEmergencyContact(w http.ResponseWriter, r *http.Request) {
	var ec domain.EmergencyContact
	if err := json.NewDecoder(r.Body).Decode(&ec); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.EmployeeService.UpdateEmergencyContact(r.Context(), r.PathValue("employeeId"), ec, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, updated)
}

func (h *EmployeeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.EmployeeService.Delete(r.Context(), r.PathValue("employeeId")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// actor resolves who performed the request for the audit fields. The
// verified token subject wins; the forwarded X-User-Id header is honoured
// only when it agrees with the token, or when the caller is one of the
// provider's service accounts acting on behalf of the user it names
// (registration creates the employee record this way). Anything else is a
// forgeable header and is ignored.
func actor(r *http.Request) string {
	forwarded := r.Header.Get(httpx.HeaderUserID)

	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		return forwarded
	}
	if forwarded != "" && strings.HasPrefix(claims.PreferredUsername, "service-account-") {
		return forwarded
	}
	return claims.Subject
}

func pageRequest(r *http.Request) service.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil || size <= 0 {
		size = 10
	}
	return service.PageRequest{Page: page, Size: size}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "employee not found")
	case errors.Is(err, service.ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		slogx.FromContext(r.Context()).Error("employee request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
