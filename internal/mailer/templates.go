package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// ConvocationAgendaItem is one agenda line in a convocation email.
type ConvocationAgendaItem struct {
	Order           int
	Title           string
	DescriptionHTML htmltemplate.HTML
	DescriptionText string
	Duration        *int
}

// ConvocationData feeds the convocation templates. Dates are preformatted.
type ConvocationData struct {
	OrganizationName string
	RecipientName    string
	MeetingTypeLabel string
	DateLabel        string
	Time             string
	Location         string
	FeedbackDeadline string
	MeetingURL       string
	Agenda           []ConvocationAgendaItem
}

const convocationHTML = `<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; color: #1f2937;">
<h1 style="font-size: 20px;">Convocation · {{.MeetingTypeLabel}}</h1>
<p>Bonjour {{.RecipientName}},</p>
<p>Vous êtes convoqué(e) à la réunion du {{.OrganizationName}} qui se tiendra le <strong>{{.DateLabel}}</strong> à <strong>{{.Time}}</strong>{{if .Location}}, {{.Location}}{{end}}.</p>
<h2 style="font-size: 16px;">Ordre du jour</h2>
<ol>
{{- range .Agenda}}
<li><strong>{{.Title}}</strong>{{if .Duration}} ({{.Duration}} min){{end}}{{if .DescriptionHTML}}<div>{{.DescriptionHTML}}</div>{{end}}</li>
{{- end}}
</ol>
{{- if .FeedbackDeadline}}
<p>Vous pouvez transmettre vos remontées jusqu'au {{.FeedbackDeadline}}.</p>
{{- end}}
{{- if .MeetingURL}}
<p><a href="{{.MeetingURL}}">Consulter la réunion</a></p>
{{- end}}
<p>La convocation officielle est jointe au format PDF.</p>
</body>
</html>
`

const convocationText = `Convocation - {{.MeetingTypeLabel}}

Bonjour {{.RecipientName}},

Vous êtes convoqué(e) à la réunion du {{.OrganizationName}} qui se tiendra le {{.DateLabel}} à {{.Time}}{{if .Location}}, {{.Location}}{{end}}.

Ordre du jour :
{{range .Agenda}}{{.Order}}. {{.Title}}{{if .Duration}} ({{.Duration}} min){{end}}
{{if .DescriptionText}}   {{.DescriptionText}}
{{end}}{{end}}
{{- if .FeedbackDeadline}}
Vous pouvez transmettre vos remontées jusqu'au {{.FeedbackDeadline}}.
{{end}}
{{- if .MeetingURL}}
{{.MeetingURL}}
{{end}}
La convocation officielle est jointe au format PDF.
`

var (
	convocationHTMLTemplate = htmltemplate.Must(htmltemplate.New("convocation.html").Parse(convocationHTML))
	convocationTextTemplate = texttemplate.Must(texttemplate.New("convocation.txt").Parse(convocationText))
)

// RenderConvocation returns the subject and both bodies of a convocation.
func RenderConvocation(data ConvocationData) (subject, html, text string, err error) {
	var htmlBuf, textBuf bytes.Buffer
	if err := convocationHTMLTemplate.Execute(&htmlBuf, data); err != nil {
		return "", "", "", fmt.Errorf("mailer: render convocation html: %w", err)
	}
	if err := convocationTextTemplate.Execute(&textBuf, data); err != nil {
		return "", "", "", fmt.Errorf("mailer: render convocation text: %w", err)
	}

	subject = fmt.Sprintf("Convocation %s - %s", data.OrganizationName, data.DateLabel)
	return subject, htmlBuf.String(), textBuf.String(), nil
}
