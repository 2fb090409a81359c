package admin

import (
	"net/http"

	"github.com/cissero/platform/internal/handler"
	"github.com/cissero/platform/internal/service"
)

// ReportsHandler handles admin report generation.
type ReportsHandler struct {
	svc *service.ReportService
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(svc *service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// GetDashboardStats handles GET /admin/reports/dashboard.
func (h *ReportsHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	handler.RespondJSON(w, http.StatusOK, h.svc.Dashboard())
}
