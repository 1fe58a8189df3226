package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"sharebite/internal/domain"
	"sharebite/internal/service"
)

type AdminHandler struct {
	adminSvc  service.AdminService
	reportSvc service.ReportService
}

func NewAdminHandler(adminSvc service.AdminService, reportSvc service.ReportService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, reportSvc: reportSvc}
}

type VerifyRequest struct {
	Action domain.VerificationDecision `json:"action"`
	Notes  string                      `json:"notes"`
}

type SuspendRequest struct {
	Action domain.SuspensionAction `json:"action"`
	Reason string                  `json:"reason"`
}

func writeSummaries(w http.ResponseWriter, orgs []domain.OrganizationSummary, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	if orgs == nil {
		orgs = []domain.OrganizationSummary{}
	}
	writeJSON(w, http.StatusOK, orgs)
}

func (h *AdminHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.adminSvc.ListPendingOrganizations(r.Context())
	writeSummaries(w, orgs, err)
}

func (h *AdminHandler) ListVerified(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.adminSvc.ListVerifiedOrganizations(r.Context())
	writeSummaries(w, orgs, err)
}

func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req VerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	org, err := h.adminSvc.VerifyOrganization(r.Context(), claims.OrgID, id, req.Action, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (h *AdminHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req SuspendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	org, err := h.adminSvc.SuspendOrganization(r.Context(), claims.OrgID, id, req.Action, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (h *AdminHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	details, err := h.adminSvc.GetOrganizationDetails(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *AdminHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	var report domain.Report
	if err := decodeJSON(r, &report); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.reportSvc.SubmitReport(r.Context(), claims.OrgID, &report)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reportSvc.ListReports(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if reports == nil {
		reports = []domain.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *AdminHandler) ResolveReport(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := h.reportSvc.ResolveReport(r.Context(), claims.OrgID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
