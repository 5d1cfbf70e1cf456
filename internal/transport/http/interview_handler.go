package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/arunjadaun2002/FlyPrep/internal/interview"
	"github.com/arunjadaun2002/FlyPrep/pkg/errs"
	"github.com/arunjadaun2002/FlyPrep/pkg/httputil"
)

type InterviewHandlers struct {
	Oracle         interview.Oracle
	MaxResumeBytes int64
}

// POST /api/interview/start (multipart, field "resume")
func (h *InterviewHandlers) Start(w http.ResponseWriter, r *http.Request) {
	limit := h.MaxResumeBytes
	if limit <= 0 {
		limit = interview.DefaultMaxResumeBytes
	}
	// room for the multipart envelope around the file
	r.Body = http.MaxBytesReader(w, r.Body, limit+64<<10)

	file, header, err := r.FormFile("resume")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			httputil.Error(r.Context(), w, http.StatusRequestEntityTooLarge, "resume is too large")
			return
		}
		httputil.Error(r.Context(), w, http.StatusBadRequest, "resume file is required")
		return
	}
	defer file.Close()

	resume, err := interview.ReadResume(header.Filename, file, limit)
	if err != nil {
		status := errs.ToHTTP(err)
		if status >= 500 {
			slog.Error("handler.StartInterview", slog.Any("err", err))
		}
		httputil.Error(r.Context(), w, status, errs.Message(err))
		return
	}

	questions, err := h.Oracle.GenerateQuestions(r.Context(), resume)
	if err != nil {
		slog.Error("handler.StartInterview.GenerateQuestions", slog.Any("err", err))
		httputil.Error(r.Context(), w, http.StatusInternalServerError, "Failed to start interview")
		return
	}

	httputil.JSON(w, http.StatusOK, StartInterviewResponse{
		Success:   true,
		Message:   "Interview started successfully",
		Resume:    ResumeInfo{Name: resume.Name, MIME: resume.MIME, Size: resume.Size},
		Questions: questions,
	})
}

// POST /api/interview/analyze
func (h *InterviewHandlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var in AnalyzeRequest
	if err := decodeJSON(r, &in); err != nil {
		httputil.Error(r.Context(), w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Oracle.Analyze(r.Context(), in.Question, in.Answer)
	if err != nil {
		writeErr(w, r, "handler.Analyze", err)
		return
	}

	httputil.JSON(w, http.StatusOK, res)
}

// POST /api/interview/summary
func (h *InterviewHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	var in SummaryRequest
	if err := decodeJSON(r, &in); err != nil {
		httputil.Error(r.Context(), w, http.StatusBadRequest, err.Error())
		return
	}

	sum, err := h.Oracle.Summarize(r.Context(), in.Results)
	if err != nil {
		writeErr(w, r, "handler.Summary", err)
		return
	}

	httputil.JSON(w, http.StatusOK, sum)
}
