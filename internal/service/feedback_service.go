package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
	"github.com/arunjadaun2002/FlyPrep/internal/notify"
	"github.com/arunjadaun2002/FlyPrep/pkg/errs"
)

// Archive keeps a copy of every submission. It is optional.
type Archive interface {
	Save(ctx context.Context, kind string, payload any) (int64, error)
	MarkDelivered(ctx context.Context, id int64, sendErr error) error
}

// FeedbackService turns bug reports and interview requests into mail.
// Delivery is attempted once; failures are returned, not retried.
type FeedbackService struct {
	sink     notify.Sink
	archive  Archive
	validate *validator.Validate
}

func NewFeedbackService(sink notify.Sink, archive Archive) *FeedbackService {
	return &FeedbackService{
		sink:     sink,
		archive:  archive,
		validate: newValidator(),
	}
}

func (s *FeedbackService) ReportBug(ctx context.Context, in domain.BugReport) error {
	if err := s.validate.Struct(in); err != nil {
		return validationError(err)
	}
	return s.deliver(ctx, domain.KindBugReport, in, notify.BugReportMessage(in))
}

func (s *FeedbackService) ScheduleInterview(ctx context.Context, in domain.InterviewRequest) error {
	if err := s.validate.Struct(in); err != nil {
		return validationError(err)
	}
	return s.deliver(ctx, domain.KindInterviewRequest, in, notify.InterviewRequestMessage(in))
}

func (s *FeedbackService) deliver(ctx context.Context, kind string, payload any, msg notify.Message) error {
	var archived int64
	if s.archive != nil {
		id, err := s.archive.Save(ctx, kind, payload)
		if err != nil {
			slog.Warn("archive submission failed", "kind", kind, "err", err)
		} else {
			archived = id
		}
	}

	sendErr := s.sink.Send(ctx, msg)
	if archived != 0 {
		if err := s.archive.MarkDelivered(ctx, archived, sendErr); err != nil {
			slog.Warn("archive mark delivered failed", "kind", kind, "id", archived, "err", err)
		}
	}
	if sendErr != nil {
		slog.Error("notification send failed", "kind", kind, "err", sendErr)
		return fmt.Errorf("notify %s: %w: %v", kind, errs.ErrUpstream, sendErr)
	}
	slog.Info("notification sent", "kind", kind, "archived_id", archived)
	return nil
}
