package handler

import (
	"fmt"
	"net/http"

	"orderdesk/internal/service"
	"orderdesk/pkg/logger"
)

// ReportHandler serves the /order/export endpoint.
type ReportHandler struct {
	reports service.ReportServiceInterface
	policy  *service.AccessPolicy
	logger  *logger.Logger
}

func NewReportHandler(reports service.ReportServiceInterface, policy *service.AccessPolicy, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		policy:  policy,
		logger:  log.WithComponent("report_handler"),
	}
}

// ExportForm handles GET /order/export: the range choices.
func (h *ReportHandler) ExportForm(w http.ResponseWriter, r *http.Request) {
	if err := h.policy.Authorize(CurrentUser(r), service.ActionExportReport, nil); err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"ranges": []string{"day", "month"},
	})
}

// Export handles POST /order/export: renders the PDF and streams it back as
// an attachment.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	rng := service.ParseReportRange(r.PostFormValue("range"))

	report, err := h.reports.Generate(r.Context(), CurrentUser(r), rng)
	if err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	if _, err := w.Write(report.Content); err != nil {
		h.logger.Error("Failed to write report response", "error", err)
	}
}
