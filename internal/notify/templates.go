package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
)

func BugReportMessage(r domain.BugReport) Message {
	desc := strings.ReplaceAll(html.EscapeString(r.Description), "\n", "<br>")
	return Message{
		Subject: "Bug Report: " + r.Title,
		Text:    fmt.Sprintf("Bug Title: %s\n\nDescription:\n%s", r.Title, r.Description),
		HTML: fmt.Sprintf("<h2>Bug Report</h2>\n<p><strong>Title:</strong> %s</p>\n<p><strong>Description:</strong></p>\n<p>%s</p>\n",
			html.EscapeString(r.Title), desc),
	}
}

func InterviewRequestMessage(r domain.InterviewRequest) Message {
	rows := [][2]string{
		{"Name", r.Name},
		{"Email", r.Email},
		{"Phone", r.Phone},
		{"Preferred Date", r.PreferredDate},
		{"Preferred Time", r.PreferredTime},
		{"College Year", r.CollegeYear},
		{"College Name", r.Company},
		{"Additional Information", r.Message},
	}

	var text, body strings.Builder
	body.WriteString("<h2>New Interview Request</h2>\n")
	for _, row := range rows {
		fmt.Fprintf(&text, "%s: %s\n", row[0], row[1])
		fmt.Fprintf(&body, "<p><strong>%s:</strong> %s</p>\n", row[0], html.EscapeString(row[1]))
	}
	return Message{
		Subject: "New Interview Request from " + r.Name,
		Text:    text.String(),
		HTML:    body.String(),
	}
}
