// Package pdf renders convocations and minutes as A4 documents.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/render"
)

const (
	pageMarginMM = 20.0
	lineHeight   = 6.0
)

type Renderer struct {
	organization string
	loc          *time.Location
}

func NewRenderer(organization string, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{organization: organization, loc: loc}
}

// Organization is the name printed in document headers.
func (r *Renderer) Organization() string { return r.organization }

// Location is the timezone dates are printed in.
func (r *Renderer) Location() *time.Location { return r.loc }

// document wraps fpdf with the cp1252 translator the core fonts need for
// French accents.
type document struct {
	*fpdf.Fpdf
	tr func(string) string
}

func (r *Renderer) newDocument(title string, createdAt time.Time) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMarginMM, pageMarginMM, pageMarginMM)
	pdf.SetAutoPageBreak(true, pageMarginMM)
	pdf.SetCreationDate(createdAt)
	pdf.AliasNbPages("")

	doc := &document{Fpdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetTitle(doc.tr(title), false)
	pdf.SetAuthor(doc.tr(r.organization), false)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, doc.tr(fmt.Sprintf("%s · page %d/{nb}", r.organization, pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	return doc
}

func (d *document) heading(text string, size float64) {
	d.SetFont("Helvetica", "B", size)
	d.SetTextColor(20, 20, 20)
	d.MultiCell(0, size*0.5, d.tr(text), "", "L", false)
	d.Ln(2)
}

func (d *document) paragraph(text string) {
	d.SetFont("Helvetica", "", 11)
	d.SetTextColor(40, 40, 40)
	d.MultiCell(0, lineHeight, d.tr(text), "", "L", false)
	d.Ln(1)
}

func (d *document) labelValue(label, value string) {
	d.SetFont("Helvetica", "B", 11)
	d.CellFormat(45, lineHeight, d.tr(label), "", 0, "L", false, 0, "")
	d.SetFont("Helvetica", "", 11)
	d.MultiCell(0, lineHeight, d.tr(value), "", "L", false)
}

func (d *document) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: output: %w", err)
	}
	return buf.Bytes(), nil
}

// Convocation renders the formal meeting notice. The meeting must carry
// its agenda and participants with users.
func (r *Renderer) Convocation(meeting *models.Meeting) ([]byte, error) {
	startsAt := meeting.StartsAt(r.loc)
	doc := r.newDocument("Convocation", startsAt)

	doc.heading(r.organization, 16)
	doc.heading("Convocation · "+render.MeetingTypeLabel(string(meeting.Type)), 14)

	doc.labelValue("Date", render.FrenchDate(startsAt))
	doc.labelValue("Heure", meeting.Time)
	if meeting.Location != nil && *meeting.Location != "" {
		doc.labelValue("Lieu", *meeting.Location)
	}
	if meeting.FeedbackDeadline != nil {
		doc.labelValue("Remontées avant le", render.FrenchDateTime(meeting.FeedbackDeadline.In(r.loc)))
	}
	doc.Ln(4)

	doc.heading("Ordre du jour", 13)
	for _, item := range meeting.AgendaItems {
		line := fmt.Sprintf("%d. %s", item.Order, item.Title)
		if item.Duration != nil {
			line += fmt.Sprintf(" (%d min)", *item.Duration)
		}
		doc.SetFont("Helvetica", "B", 11)
		doc.MultiCell(0, lineHeight, doc.tr(line), "", "L", false)
		if item.Description != nil && *item.Description != "" {
			doc.SetX(pageMarginMM + 6)
			doc.paragraph(render.MarkdownText(*item.Description))
		}
	}
	doc.Ln(4)

	if len(meeting.Participants) > 0 {
		doc.heading("Membres convoqués", 13)
		for _, p := range meeting.Participants {
			if p.User == nil {
				continue
			}
			line := "- " + p.User.Name
			if p.User.CSERole != nil && *p.User.CSERole != "" {
				line += " (" + *p.User.CSERole + ")"
			}
			doc.paragraph(line)
		}
	}

	return doc.bytes()
}

// Minute renders a meeting minute with its signature list. The minute
// must carry its meeting and signatures with users.
func (r *Renderer) Minute(minute *models.MeetingMinute) ([]byte, error) {
	createdAt := minute.UpdatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	doc := r.newDocument("Procès-verbal", createdAt)

	doc.heading(r.organization, 16)
	title := "Procès-verbal de réunion"
	if minute.Meeting != nil {
		title += " du " + render.FrenchDate(minute.Meeting.StartsAt(r.loc))
	}
	doc.heading(title, 14)
	doc.labelValue("Statut", render.MinuteStatusLabel(string(minute.Status)))
	doc.Ln(4)

	doc.paragraph(render.MarkdownText(minute.Content))
	doc.Ln(4)

	doc.heading("Signatures", 13)
	if len(minute.Signatures) == 0 {
		doc.paragraph("Aucune signature.")
	}
	for _, s := range minute.Signatures {
		name := fmt.Sprintf("utilisateur #%d", s.UserID)
		if s.User != nil {
			name = s.User.Name
		}
		line := fmt.Sprintf("%s · signé le %s", name, render.FrenchDateTime(s.SignedAt.In(r.loc)))
		if s.Comments != nil && *s.Comments != "" {
			line += "\n" + *s.Comments
		}
		doc.paragraph(line)
	}

	return doc.bytes()
}
