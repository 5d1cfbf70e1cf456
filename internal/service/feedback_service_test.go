package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
	"github.com/arunjadaun2002/FlyPrep/internal/notify"
	"github.com/arunjadaun2002/FlyPrep/pkg/errs"
)

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Send(ctx context.Context, msg notify.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type mockArchive struct {
	mock.Mock
}

func (m *mockArchive) Save(ctx context.Context, kind string, payload any) (int64, error) {
	args := m.Called(ctx, kind, payload)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockArchive) MarkDelivered(ctx context.Context, id int64, sendErr error) error {
	return m.Called(ctx, id, sendErr).Error(0)
}

func TestReportBug_SendsAndArchives(t *testing.T) {
	sink := new(mockSink)
	archive := new(mockArchive)
	in := domain.BugReport{Title: "Crash", Description: "on join"}

	archive.On("Save", mock.Anything, domain.KindBugReport, in).Return(int64(7), nil)
	sink.On("Send", mock.Anything, mock.MatchedBy(func(m notify.Message) bool {
		return m.Subject == "Bug Report: Crash"
	})).Return(nil)
	archive.On("MarkDelivered", mock.Anything, int64(7), nil).Return(nil)

	svc := NewFeedbackService(sink, archive)
	require.NoError(t, svc.ReportBug(context.Background(), in))

	sink.AssertExpectations(t)
	archive.AssertExpectations(t)
}

func TestReportBug_Invalid(t *testing.T) {
	sink := new(mockSink)
	svc := NewFeedbackService(sink, nil)

	err := svc.ReportBug(context.Background(), domain.BugReport{Description: "no title"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "title is required")
	sink.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestScheduleInterview_SinkFailureIsUpstream(t *testing.T) {
	sink := new(mockSink)
	archive := new(mockArchive)
	boom := errors.New("smtp down")
	in := domain.InterviewRequest{Name: "Asha", Email: "asha@example.com"}

	archive.On("Save", mock.Anything, domain.KindInterviewRequest, in).Return(int64(3), nil)
	sink.On("Send", mock.Anything, mock.Anything).Return(boom).Once()
	archive.On("MarkDelivered", mock.Anything, int64(3), boom).Return(nil)

	svc := NewFeedbackService(sink, archive)
	err := svc.ScheduleInterview(context.Background(), in)
	require.ErrorIs(t, err, errs.ErrUpstream)

	sink.AssertNumberOfCalls(t, "Send", 1)
	archive.AssertExpectations(t)
}

func TestScheduleInterview_ArchiveFailureStillSends(t *testing.T) {
	sink := new(mockSink)
	archive := new(mockArchive)
	in := domain.InterviewRequest{Name: "Asha", Email: "asha@example.com"}

	archive.On("Save", mock.Anything, domain.KindInterviewRequest, in).Return(int64(0), errors.New("db down"))
	sink.On("Send", mock.Anything, mock.Anything).Return(nil)

	svc := NewFeedbackService(sink, archive)
	require.NoError(t, svc.ScheduleInterview(context.Background(), in))
	archive.AssertNotCalled(t, "MarkDelivered", mock.Anything, mock.Anything, mock.Anything)
}

func TestScheduleInterview_BadEmail(t *testing.T) {
	svc := NewFeedbackService(new(mockSink), nil)

	err := svc.ScheduleInterview(context.Background(), domain.InterviewRequest{Name: "Asha", Email: "nope"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "email must be a valid email")
}
