package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/yukikurage/cse-council-api/internal/logging"
	"github.com/yukikurage/cse-council-api/internal/mailer"
	"github.com/yukikurage/cse-council-api/internal/metrics"
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/pdf"
	"github.com/yukikurage/cse-council-api/internal/permissions"
	"github.com/yukikurage/cse-council-api/internal/render"
	"github.com/yukikurage/cse-council-api/internal/repository"
)

// undecidedLocation is printed when a meeting has no location yet.
const undecidedLocation = "À définir"

// ConvocationService renders convocations and emails them to participants.
// A meeting's convocation goes out at most once.
type ConvocationService struct {
	meetingRepo repository.MeetingRepository
	mailer      mailer.Mailer
	pdf         *pdf.Renderer
	metrics     *metrics.Metrics
	publicURL   string
	concurrency int
	now         func() time.Time
}

// ConvocationOptions configures a ConvocationService.
type ConvocationOptions struct {
	PublicURL   string
	Concurrency int
	Now         func() time.Time
}

// NewConvocationService creates a new ConvocationService
func NewConvocationService(meetingRepo repository.MeetingRepository, m mailer.Mailer, renderer *pdf.Renderer, mx *metrics.Metrics, opts ConvocationOptions) *ConvocationService {
	if opts.Now == nil {
		opts.Now = systemNow
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &ConvocationService{
		meetingRepo: meetingRepo,
		mailer:      m,
		pdf:         renderer,
		metrics:     mx,
		publicURL:   strings.TrimRight(opts.PublicURL, "/"),
		concurrency: opts.Concurrency,
		now:         opts.Now,
	}
}

// DispatchResult reports a convocation send. Errors lists recipients whose
// email failed even though the convocation is marked sent.
type DispatchResult struct {
	SentCount         int                     `json:"sent_count"`
	Errors            []mailer.RecipientError `json:"errors"`
	ConvocationSentAt time.Time               `json:"convocation_sent_at"`
	Meeting           *models.Meeting         `json:"meeting"`
}

// ConvocationPDF is a rendered convocation document.
type ConvocationPDF struct {
	Body     []byte
	Filename string
}

// Send emails the convocation to every participant. The dispatch marker is
// claimed before any email leaves; if no email is delivered the claim is
// released and DeliveryFailedError returned. A partial send keeps the marker.
func (s *ConvocationService) Send(ctx context.Context, actor Actor, meetingID uint64) (*DispatchResult, error) {
	if err := authorize(actor, permissions.SendConvocation); err != nil {
		return nil, err
	}

	meeting, err := s.loadMeeting(meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.ConvocationSentAt != nil {
		return nil, &AlreadySentError{SentAt: *meeting.ConvocationSentAt}
	}
	if len(meeting.Participants) == 0 {
		return nil, ErrNoParticipants
	}
	if len(meeting.AgendaItems) == 0 {
		return nil, ErrNoAgenda
	}

	document, err := s.renderPDF(meeting)
	if err != nil {
		return nil, err
	}
	messages, err := s.messages(meeting, document)
	if err != nil {
		return nil, err
	}

	sentAt := s.now()
	claimed, err := s.meetingRepo.ClaimConvocation(meeting.ID, sentAt)
	if err != nil {
		return nil, fmt.Errorf("failed to mark convocation: %w", err)
	}
	if !claimed {
		return nil, s.alreadySent(meeting.ID)
	}

	logger := logging.FromContext(ctx).With(slog.Uint64("meeting_id", meeting.ID))
	report := mailer.SendAll(ctx, s.mailer, messages, s.concurrency)

	if report.SentCount == 0 {
		if err := s.meetingRepo.ReleaseConvocation(meeting.ID, meeting.Status); err != nil {
			logger.Error("failed to release convocation marker", slog.Any("error", err))
			return nil, fmt.Errorf("failed to release convocation marker: %w", err)
		}
		s.metrics.ConvocationDispatched(0, len(report.Errors), false)
		logger.Warn("convocation not delivered", slog.Int("failed", len(report.Errors)))
		return nil, &DeliveryFailedError{Errors: report.Errors}
	}

	s.metrics.ConvocationDispatched(report.SentCount, len(report.Errors), true)
	logger.Info("convocation sent",
		slog.Int("sent", report.SentCount),
		slog.Int("failed", len(report.Errors)),
		slog.Uint64("actor_id", actor.ID),
	)

	updated, err := s.meetingRepo.FindByID(meeting.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload meeting: %w", err)
	}

	errs := report.Errors
	if errs == nil {
		errs = []mailer.RecipientError{}
	}
	return &DispatchResult{
		SentCount:         report.SentCount,
		Errors:            errs,
		ConvocationSentAt: sentAt,
		Meeting:           updated,
	}, nil
}

// RenderPDF renders a meeting's convocation without sending it
func (s *ConvocationService) RenderPDF(actor Actor, meetingID uint64) (*ConvocationPDF, error) {
	if err := authorize(actor, permissions.SendConvocation); err != nil {
		return nil, err
	}
	meeting, err := s.loadMeeting(meetingID)
	if err != nil {
		return nil, err
	}
	return s.renderPDF(meeting)
}

func (s *ConvocationService) loadMeeting(id uint64) (*models.Meeting, error) {
	meeting, err := s.meetingRepo.FindByID(id, "Participants", "Participants.User", "AgendaItems")
	if err != nil {
		return nil, lookupError(err, ErrMeetingNotFound, "meeting")
	}
	sort.SliceStable(meeting.Participants, func(i, j int) bool {
		return participantName(meeting.Participants[i]) < participantName(meeting.Participants[j])
	})
	sort.SliceStable(meeting.AgendaItems, func(i, j int) bool {
		return meeting.AgendaItems[i].Order < meeting.AgendaItems[j].Order
	})
	return meeting, nil
}

func (s *ConvocationService) renderPDF(meeting *models.Meeting) (*ConvocationPDF, error) {
	body, err := s.pdf.Convocation(meeting)
	if err != nil {
		return nil, fmt.Errorf("failed to render convocation pdf: %w", err)
	}
	return &ConvocationPDF{
		Body:     body,
		Filename: fmt.Sprintf("convocation-%s.pdf", meeting.Date.Format("2006-01-02")),
	}, nil
}

func (s *ConvocationService) messages(meeting *models.Meeting, document *ConvocationPDF) ([]mailer.Message, error) {
	loc := s.pdf.Location()

	data := mailer.ConvocationData{
		OrganizationName: s.pdf.Organization(),
		MeetingTypeLabel: render.MeetingTypeLabel(string(meeting.Type)),
		DateLabel:        render.FrenchDate(meeting.StartsAt(loc)),
		Time:             meeting.Time,
		Location:         undecidedLocation,
	}
	if meeting.Location != nil && *meeting.Location != "" {
		data.Location = *meeting.Location
	}
	if meeting.FeedbackDeadline != nil {
		data.FeedbackDeadline = render.FrenchDateTime(meeting.FeedbackDeadline.In(loc))
	}
	if s.publicURL != "" {
		data.MeetingURL = fmt.Sprintf("%s/meetings/%d", s.publicURL, meeting.ID)
	}
	for _, item := range meeting.AgendaItems {
		line := mailer.ConvocationAgendaItem{
			Order:    item.Order,
			Title:    item.Title,
			Duration: item.Duration,
		}
		if item.Description != nil {
			html, err := render.MarkdownHTML(*item.Description)
			if err != nil {
				return nil, fmt.Errorf("failed to render agenda item %d: %w", item.ID, err)
			}
			line.DescriptionHTML = html
			line.DescriptionText = render.MarkdownText(*item.Description)
		}
		data.Agenda = append(data.Agenda, line)
	}

	attachment := mailer.Attachment{
		Filename:    document.Filename,
		ContentType: "application/pdf",
		Data:        document.Body,
	}

	messages := make([]mailer.Message, 0, len(meeting.Participants))
	for _, p := range meeting.Participants {
		if p.User == nil {
			continue
		}
		data.RecipientName = p.User.Name
		subject, html, text, err := mailer.RenderConvocation(data)
		if err != nil {
			return nil, fmt.Errorf("failed to render convocation email: %w", err)
		}
		messages = append(messages, mailer.Message{
			To:          p.User.Email,
			ToName:      p.User.Name,
			Subject:     subject,
			HTML:        html,
			Text:        text,
			Attachments: []mailer.Attachment{attachment},
		})
	}
	return messages, nil
}

// alreadySent reports the marker set by a concurrent dispatch.
func (s *ConvocationService) alreadySent(meetingID uint64) error {
	meeting, err := s.meetingRepo.FindByID(meetingID)
	if err != nil || meeting.ConvocationSentAt == nil {
		return ErrAlreadySent
	}
	return &AlreadySentError{SentAt: *meeting.ConvocationSentAt}
}

func participantName(p models.Participant) string {
	if p.User == nil {
		return ""
	}
	return p.User.Name
}
