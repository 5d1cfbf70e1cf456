package domain

// Submission kinds stored by the archive.
const (
	KindBugReport        = "bug_report"
	KindInterviewRequest = "interview_request"
)

type BugReport struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
}

type InterviewRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"max=32"`
	PreferredDate string `json:"preferredDate" validate:"max=32"`
	PreferredTime string `json:"preferredTime" validate:"max=32"`
	CollegeYear   string `json:"collegeYear" validate:"max=32"`
	Company       string `json:"company" validate:"max=200"`
	Message       string `json:"message" validate:"max=5000"`
}
