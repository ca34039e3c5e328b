package render

import (
	"bytes"
	"html/template"
)

// MinuteSignatureLine is one signer in an exported minute.
type MinuteSignatureLine struct {
	Name     string
	CSERole  string
	SignedAt string
	Comments string
}

// MinutePageData feeds the standalone HTML export of a minute.
type MinutePageData struct {
	OrganizationName string
	Title            string
	StatusLabel      string
	Content          template.HTML
	Signatures       []MinuteSignatureLine
}

const minutePage = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; max-width: 800px; margin: 2em auto; color: #1f2937; }
.status { color: #6b7280; }
.signatures li { margin-bottom: 0.5em; }
</style>
</head>
<body>
<p>{{.OrganizationName}}</p>
<h1>{{.Title}}</h1>
<p class="status">Statut : {{.StatusLabel}}</p>
<article>
{{.Content}}
</article>
<h2>Signatures</h2>
{{- if .Signatures}}
<ul class="signatures">
{{- range .Signatures}}
<li><strong>{{.Name}}</strong>{{if .CSERole}} ({{.CSERole}}){{end}}, signé le {{.SignedAt}}{{if .Comments}}<br><em>{{.Comments}}</em>{{end}}</li>
{{- end}}
</ul>
{{- else}}
<p>Aucune signature.</p>
{{- end}}
</body>
</html>
`

var minutePageTemplate = template.Must(template.New("minute.html").Parse(minutePage))

// MinutePage renders a minute as a standalone HTML document.
func MinutePage(data MinutePageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := minutePageTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
