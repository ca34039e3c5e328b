package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yukikurage/cse-council-api/internal/constants"
	"github.com/yukikurage/cse-council-api/internal/logging"
	"github.com/yukikurage/cse-council-api/internal/metrics"
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/pdf"
	"github.com/yukikurage/cse-council-api/internal/permissions"
	"github.com/yukikurage/cse-council-api/internal/render"
	"github.com/yukikurage/cse-council-api/internal/repository"
	"gorm.io/gorm"
)

// Export formats for minutes
const (
	ExportFormatHTML = "html"
	ExportFormatPDF  = "pdf"
)

// MinuteService drives a minute through DRAFT, PENDING_SIGNATURE, SIGNED
// and PUBLISHED. Status writes are compare-and-swap on the stored status.
type MinuteService struct {
	minuteRepo    repository.MinuteRepository
	meetingRepo   repository.MeetingRepository
	signatureRepo repository.SignatureRepository
	userRepo      repository.UserRepository
	pdf           *pdf.Renderer
	metrics       *metrics.Metrics
}

// NewMinuteService creates a new MinuteService
func NewMinuteService(
	minuteRepo repository.MinuteRepository,
	meetingRepo repository.MeetingRepository,
	signatureRepo repository.SignatureRepository,
	userRepo repository.UserRepository,
	renderer *pdf.Renderer,
	m *metrics.Metrics,
) *MinuteService {
	return &MinuteService{
		minuteRepo:    minuteRepo,
		meetingRepo:   meetingRepo,
		signatureRepo: signatureRepo,
		userRepo:      userRepo,
		pdf:           renderer,
		metrics:       m,
	}
}

// ListMinutesInput represents filters for listing minutes
type ListMinutesInput struct {
	MeetingID *uint64
	Status    *models.MinuteStatus
	Limit     int
	Offset    int
}

// CreateMinuteInput represents input for drafting a minute
type CreateMinuteInput struct {
	MeetingID uint64
	Content   string
}

// UpdateMinuteInput represents input for editing a minute
type UpdateMinuteInput struct {
	Content *string
	Status  *models.MinuteStatus
}

// MinuteDetail is a minute with its live signature progress.
type MinuteDetail struct {
	*models.MeetingMinute
	Progress models.SignatureProgress `json:"signature_progress"`
}

// ExportedMinute is a rendered minute ready to be served.
type ExportedMinute struct {
	Body        []byte
	ContentType string
	Filename    string
}

// ListMinutes lists minutes, newest first
func (s *MinuteService) ListMinutes(input ListMinutesInput) ([]models.MeetingMinute, int64, error) {
	minutes, total, err := s.minuteRepo.List(repository.MinuteFilter{
		MeetingID: input.MeetingID,
		Status:    input.Status,
		Limit:     input.Limit,
		Offset:    input.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list minutes: %w", err)
	}
	return minutes, total, nil
}

// GetMinute returns a minute with its meeting, signatures and progress
func (s *MinuteService) GetMinute(id uint64) (*MinuteDetail, error) {
	minute, err := s.minuteRepo.FindByID(id, "Meeting", "CreatedBy", "Signatures", "Signatures.User")
	if err != nil {
		return nil, lookupError(err, ErrMinuteNotFound, "minute")
	}

	required, err := s.userRepo.CountActiveManagers()
	if err != nil {
		return nil, fmt.Errorf("failed to count signers: %w", err)
	}

	return &MinuteDetail{
		MeetingMinute: minute,
		Progress:      models.NewSignatureProgress(int64(len(minute.Signatures)), required),
	}, nil
}

// CreateMinute drafts the minute of a meeting. A meeting has at most one.
func (s *MinuteService) CreateMinute(ctx context.Context, actor Actor, input CreateMinuteInput) (*MinuteDetail, error) {
	if err := authorize(actor, permissions.CreateMinute); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(input.Content)
	if err := validateMinuteContent(content); err != nil {
		return nil, err
	}

	if _, err := s.meetingRepo.FindByID(input.MeetingID); err != nil {
		return nil, lookupError(err, ErrMeetingNotFound, "meeting")
	}

	hasMinute, err := s.meetingRepo.HasMinute(input.MeetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing minute: %w", err)
	}
	if hasMinute {
		return nil, ErrMinuteExists
	}

	minute := &models.MeetingMinute{
		MeetingID:   input.MeetingID,
		Content:     content,
		Status:      models.MinuteStatusDraft,
		CreatedByID: actor.ID,
	}
	if err := s.minuteRepo.Create(minute); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrMinuteExists
		}
		return nil, fmt.Errorf("failed to create minute: %w", err)
	}

	logging.FromContext(ctx).Info("minute created",
		slog.Uint64("minute_id", minute.ID),
		slog.Uint64("meeting_id", minute.MeetingID),
	)

	return s.GetMinute(minute.ID)
}

// UpdateMinute edits content and/or status. Content changes need DRAFT and
// the status change must follow the transition table; both are checked
// before anything is written.
func (s *MinuteService) UpdateMinute(ctx context.Context, actor Actor, id uint64, input UpdateMinuteInput) (*MinuteDetail, error) {
	if err := authorize(actor, permissions.EditMinute); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, input)
}

// SubmitMinute moves a draft to PENDING_SIGNATURE
func (s *MinuteService) SubmitMinute(ctx context.Context, actor Actor, id uint64) (*MinuteDetail, error) {
	if err := authorize(actor, permissions.EditMinute); err != nil {
		return nil, err
	}
	status := models.MinuteStatusPendingSignature
	return s.transition(ctx, actor, id, UpdateMinuteInput{Status: &status})
}

// PublishMinute moves a signed minute to PUBLISHED
func (s *MinuteService) PublishMinute(ctx context.Context, actor Actor, id uint64) (*MinuteDetail, error) {
	if err := authorize(actor, permissions.PublishMinute); err != nil {
		return nil, err
	}
	status := models.MinuteStatusPublished
	return s.transition(ctx, actor, id, UpdateMinuteInput{Status: &status})
}

func (s *MinuteService) transition(ctx context.Context, actor Actor, id uint64, input UpdateMinuteInput) (*MinuteDetail, error) {
	minute, err := s.minuteRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, ErrMinuteNotFound, "minute")
	}
	from := minute.Status

	if input.Content != nil {
		if !minute.ContentEditable() {
			return nil, ErrMinuteNotEditable
		}
		content := strings.TrimSpace(*input.Content)
		if err := validateMinuteContent(content); err != nil {
			return nil, err
		}
		minute.Content = content
	}

	if input.Status != nil {
		to := *input.Status
		if !to.Valid() {
			return nil, invalid("status", "unknown minute status %q", to)
		}
		if !from.CanTransitionTo(to) {
			return nil, &InvalidTransitionError{From: from, To: to}
		}
		if to == models.MinuteStatusPublished && from != to {
			if err := authorize(actor, permissions.PublishMinute); err != nil {
				return nil, err
			}
		}
		minute.Status = to
	}

	ok, err := s.minuteRepo.Update(minute, from)
	if err != nil {
		return nil, fmt.Errorf("failed to update minute: %w", err)
	}
	if !ok {
		return nil, ErrConcurrentUpdate
	}

	if minute.Status != from {
		s.metrics.MinuteTransition(string(from), string(minute.Status))
		logging.FromContext(ctx).Info("minute status changed",
			slog.Uint64("minute_id", minute.ID),
			slog.String("from", string(from)),
			slog.String("to", string(minute.Status)),
			slog.Uint64("actor_id", actor.ID),
		)
	}

	return s.GetMinute(minute.ID)
}

// DeleteMinute removes a minute and its signatures unless it is published
func (s *MinuteService) DeleteMinute(ctx context.Context, actor Actor, id uint64) error {
	if err := authorize(actor, permissions.EditMinute); err != nil {
		return err
	}

	minute, err := s.minuteRepo.FindByID(id)
	if err != nil {
		return lookupError(err, ErrMinuteNotFound, "minute")
	}
	if !minute.Deletable() {
		return ErrMinutePublished
	}

	deleted, err := s.minuteRepo.Delete(id)
	if err != nil {
		return fmt.Errorf("failed to delete minute: %w", err)
	}
	if !deleted {
		// Published or removed between the read and the delete.
		if _, err := s.minuteRepo.FindByID(id); errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMinuteNotFound
		}
		return ErrMinutePublished
	}

	logging.FromContext(ctx).Info("minute deleted", slog.Uint64("minute_id", id), slog.Uint64("actor_id", actor.ID))
	return nil
}

// ExportMinute renders a minute as HTML or PDF
func (s *MinuteService) ExportMinute(id uint64, format string) (*ExportedMinute, error) {
	detail, err := s.GetMinute(id)
	if err != nil {
		return nil, err
	}
	minute := detail.MeetingMinute

	switch format {
	case "", ExportFormatHTML:
		body, err := s.minuteHTML(minute)
		if err != nil {
			return nil, fmt.Errorf("failed to render minute: %w", err)
		}
		return &ExportedMinute{
			Body:        body,
			ContentType: "text/html; charset=utf-8",
			Filename:    fmt.Sprintf("proces-verbal-%d.html", minute.ID),
		}, nil
	case ExportFormatPDF:
		body, err := s.pdf.Minute(minute)
		if err != nil {
			return nil, fmt.Errorf("failed to render minute pdf: %w", err)
		}
		return &ExportedMinute{
			Body:        body,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("proces-verbal-%d.pdf", minute.ID),
		}, nil
	default:
		return nil, invalid("format", "must be %s or %s", ExportFormatHTML, ExportFormatPDF)
	}
}

func (s *MinuteService) minuteHTML(minute *models.MeetingMinute) ([]byte, error) {
	content, err := render.MarkdownHTML(minute.Content)
	if err != nil {
		return nil, err
	}

	loc := s.pdf.Location()
	title := "Procès-verbal de réunion"
	if minute.Meeting != nil {
		title += " du " + render.FrenchDate(minute.Meeting.StartsAt(loc))
	}

	data := render.MinutePageData{
		OrganizationName: s.pdf.Organization(),
		Title:            title,
		StatusLabel:      render.MinuteStatusLabel(string(minute.Status)),
		Content:          content,
	}
	for _, sig := range minute.Signatures {
		line := render.MinuteSignatureLine{
			Name:     fmt.Sprintf("utilisateur #%d", sig.UserID),
			SignedAt: render.FrenchDateTime(sig.SignedAt.In(loc)),
		}
		if sig.User != nil {
			line.Name = sig.User.Name
			if sig.User.CSERole != nil {
				line.CSERole = *sig.User.CSERole
			}
		}
		if sig.Comments != nil {
			line.Comments = *sig.Comments
		}
		data.Signatures = append(data.Signatures, line)
	}

	return render.MinutePage(data)
}

func validateMinuteContent(content string) error {
	if runeLen(content) < constants.MinMinuteContentLength {
		return invalid("content", "must be at least %d characters", constants.MinMinuteContentLength)
	}
	return nil
}
