package notify

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/nikhilbhutani/agencyhub/internal/queue"
)

var templates = template.Must(template.New("notify").Funcs(template.FuncMap{
	"humanize": func(s string) string { return strings.ReplaceAll(s, "_", " ") },
}).Parse(`
{{define "claim_approved"}}Good news!

Your request to manage {{.AgencyName}} has been approved. You can now sign in and
update the agency profile and compliance documents.
{{end}}

{{define "claim_rejected"}}Your request to manage {{.AgencyName}} was not approved.

Reason given by the reviewer:
{{.Reason}}

You may submit a new request with additional details at any time.
{{end}}

{{define "claim_under_review"}}Your request to manage {{.AgencyName}} is now under review.
We will email you again once a decision has been made.
{{end}}

{{define "compliance_rejected"}}A compliance document for {{.AgencyName}} needs attention.

Item: {{humanize .ComplianceType}}
Reason: {{.Reason}}

Please upload a corrected document from your agency dashboard.
{{end}}

{{define "labor_request_received"}}Hi {{.ContactName}},

We received your labor request for {{.ProjectName}} ({{.CompanyName}}):
{{.CraftCount}} craft line(s), {{.Workers}} worker(s) in total.

Reference: {{.RequestID}}
Our team will be in touch shortly.
{{end}}
`))

func render(name string, data interface{}) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(b.String()) + "\n", nil
}

func ClaimDecision(p queue.ClaimDecisionPayload) (Message, error) {
	var name, subject string
	switch p.Status {
	case "approved":
		name, subject = "claim_approved", "Your claim for "+p.AgencyName+" was approved"
	case "rejected":
		name, subject = "claim_rejected", "Your claim for "+p.AgencyName+" was not approved"
	case "under_review":
		name, subject = "claim_under_review", "Your claim for "+p.AgencyName+" is under review"
	default:
		return Message{}, fmt.Errorf("no template for claim status %q", p.Status)
	}
	body, err := render(name, p)
	if err != nil {
		return Message{}, err
	}
	return Message{To: p.To, Subject: subject, Body: body}, nil
}

func ComplianceRejected(p queue.ComplianceRejectedPayload) (Message, error) {
	body, err := render("compliance_rejected", p)
	if err != nil {
		return Message{}, err
	}
	return Message{To: p.To, Subject: "Action needed: compliance document for " + p.AgencyName, Body: body}, nil
}

func LaborRequestReceived(p queue.LaborRequestReceivedPayload) (Message, error) {
	body, err := render("labor_request_received", p)
	if err != nil {
		return Message{}, err
	}
	return Message{To: p.To, Subject: "We received your labor request", Body: body}, nil
}
