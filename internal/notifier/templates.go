package notifier

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/katatrina/complaint-BE/internal/mailer"
	"github.com/katatrina/complaint-BE/internal/partner"
)

var layout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2 style="color: #1a4d8f;">{{.Heading}}</h2>
  {{range .Lines}}<p>{{.}}</p>
  {{end}}
  <hr>
  <p style="font-size: 12px; color: #777;">This is an automated message from the complaint desk. Please do not reply.</p>
</body>
</html>`))

type message struct {
	Subject string
	Heading string
	Lines   []string
}

type content struct {
	Report        *partner.Report
	OfficerName   string
	InitiatorName string
	Reason        string
	ChatroomID    string
}

func (c content) label() string {
	return c.Report.Label()
}

func (c content) titleLine() string {
	line := fmt.Sprintf("Complaint: %s", c.label())
	if c.Report.Title != "" {
		line += fmt.Sprintf(" (%s)", c.Report.Title)
	}
	if !c.Report.CreatedAt.IsZero() {
		line += fmt.Sprintf(", submitted %s", humanize.Time(c.Report.CreatedAt))
	}
	return line + "."
}

func (c content) officer() string {
	if c.OfficerName != "" {
		return c.OfficerName
	}
	return "an officer"
}

func staffMessage(trigger Trigger, c content) message {
	switch trigger {
	case TriggerAssignAdmin:
		return message{
			Subject: fmt.Sprintf("Complaint %s assigned to %s", c.label(), c.officer()),
			Heading: "Complaint assigned",
			Lines: []string{
				c.titleLine(),
				fmt.Sprintf("%s assigned %s to handle this complaint.", c.InitiatorName, c.officer()),
			},
		}
	case TriggerRevokeAdmin:
		return message{
			Subject: fmt.Sprintf("Officer removed from complaint %s", c.label()),
			Heading: "Assignment revoked",
			Lines: []string{
				c.titleLine(),
				fmt.Sprintf("%s removed %s from this complaint. It is waiting for a new assignment.", c.InitiatorName, c.officer()),
			},
		}
	case TriggerResolve:
		return message{
			Subject: fmt.Sprintf("Complaint %s resolved", c.label()),
			Heading: "Complaint resolved",
			Lines: []string{
				c.titleLine(),
				fmt.Sprintf("%s marked this complaint as resolved.", c.InitiatorName),
			},
		}
	case TriggerClose:
		return message{
			Subject: fmt.Sprintf("Complaint %s closed", c.label()),
			Heading: "Complaint closed",
			Lines: []string{
				c.titleLine(),
				fmt.Sprintf("%s closed this complaint.", c.InitiatorName),
				fmt.Sprintf("Reason: %s", c.Reason),
			},
		}
	case TriggerChatroomInitiate:
		return message{
			Subject: fmt.Sprintf("Chatroom opened for complaint %s", c.label()),
			Heading: "Chatroom created",
			Lines: []string{
				c.titleLine(),
				fmt.Sprintf("%s opened a chatroom with the student.", c.InitiatorName),
			},
		}
	default:
		panic(fmt.Sprintf("notifier: no staff template for %q", trigger))
	}
}

func studentMessage(trigger Trigger, c content) message {
	switch trigger {
	case TriggerAssignAdmin:
		return message{
			Subject: fmt.Sprintf("Your complaint %s is in progress", c.label()),
			Heading: "Your complaint has been assigned",
			Lines: []string{
				c.titleLine(),
				fmt.Sprintf("%s is now handling your complaint.", c.officer()),
			},
		}
	case TriggerRevokeAdmin:
		return message{
			Subject: fmt.Sprintf("Update on your complaint %s", c.label()),
			Heading: "Your complaint is being reassigned",
			Lines: []string{
				c.titleLine(),
				"The officer previously handling your complaint has been unassigned. A new officer will be assigned shortly.",
			},
		}
	case TriggerResolve:
		return message{
			Subject: fmt.Sprintf("Your complaint %s has been Resolved", c.label()),
			Heading: "Resolved",
			Lines: []string{
				c.titleLine(),
				"Your complaint has been resolved. Thank you for your patience.",
			},
		}
	case TriggerClose:
		return message{
			Subject: fmt.Sprintf("Your complaint %s has been Closed", c.label()),
			Heading: "Closed",
			Lines: []string{
				c.titleLine(),
				"Your complaint has been closed.",
				fmt.Sprintf("Reason: %s", c.Reason),
			},
		}
	case TriggerChatroomInitiate:
		return message{
			Subject: fmt.Sprintf("New chatroom for your complaint %s", c.label()),
			Heading: "An officer wants to talk to you",
			Lines: []string{
				c.titleLine(),
				fmt.Sprintf("%s opened a chatroom about your complaint. Sign in to reply.", c.officer()),
			},
		}
	default:
		panic(fmt.Sprintf("notifier: no student template for %q", trigger))
	}
}

func render(to []string, m message) (mailer.Email, error) {
	var html bytes.Buffer
	if err := layout.Execute(&html, m); err != nil {
		return mailer.Email{}, fmt.Errorf("failed to render %q: %w", m.Subject, err)
	}

	return mailer.Email{
		To:      to,
		Subject: m.Subject,
		Text:    strings.Join(m.Lines, "\n\n"),
		HTML:    html.String(),
	}, nil
}
