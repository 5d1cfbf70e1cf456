package http

import (
	"net/http"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
	"github.com/arunjadaun2002/FlyPrep/internal/service"
	"github.com/arunjadaun2002/FlyPrep/pkg/errs"
	"github.com/arunjadaun2002/FlyPrep/pkg/httputil"
)

type FeedbackHandlers struct {
	Feedback *service.FeedbackService
}

// feedbackFailure keeps input errors visible and hides delivery errors behind
// a fixed message.
func feedbackFailure(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if status := errs.ToHTTP(err); status == http.StatusBadRequest {
		httputil.Error(r.Context(), w, status, errs.Message(err))
		return
	}
	httputil.Error(r.Context(), w, http.StatusInternalServerError, msg)
}

// POST /api/report-bug
func (h *FeedbackHandlers) ReportBug(w http.ResponseWriter, r *http.Request) {
	var in domain.BugReport
	if err := decodeJSON(r, &in); err != nil {
		httputil.Error(r.Context(), w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Feedback.ReportBug(r.Context(), in); err != nil {
		feedbackFailure(w, r, err, "Failed to send bug report")
		return
	}

	httputil.JSON(w, http.StatusOK, MessageResponse{Message: "Bug report sent successfully"})
}

// POST /api/interview/schedule
func (h *FeedbackHandlers) ScheduleInterview(w http.ResponseWriter, r *http.Request) {
	var in domain.InterviewRequest
	if err := decodeJSON(r, &in); err != nil {
		httputil.Error(r.Context(), w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Feedback.ScheduleInterview(r.Context(), in); err != nil {
		feedbackFailure(w, r, err, "Failed to send email")
		return
	}

	httputil.JSON(w, http.StatusOK, MessageResponse{Message: "Email sent successfully"})
}
