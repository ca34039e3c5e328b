package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yukikurage/cse-council-api/internal/constants"
	"github.com/yukikurage/cse-council-api/internal/logging"
	"github.com/yukikurage/cse-council-api/internal/metrics"
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/permissions"
	"github.com/yukikurage/cse-council-api/internal/repository"
	"gorm.io/gorm"
)

// SignatureService records signatures on minutes awaiting them and promotes
// a minute to SIGNED once every active manager has signed.
type SignatureService struct {
	signatureRepo repository.SignatureRepository
	minuteRepo    repository.MinuteRepository
	userRepo      repository.UserRepository
	metrics       *metrics.Metrics
	now           func() time.Time
}

// NewSignatureService creates a new SignatureService
func NewSignatureService(signatureRepo repository.SignatureRepository, minuteRepo repository.MinuteRepository, userRepo repository.UserRepository, m *metrics.Metrics, now func() time.Time) *SignatureService {
	if now == nil {
		now = systemNow
	}
	return &SignatureService{
		signatureRepo: signatureRepo,
		minuteRepo:    minuteRepo,
		userRepo:      userRepo,
		metrics:       m,
		now:           now,
	}
}

// SignInput represents input for signing a minute
type SignInput struct {
	MinuteID uint64
	Comments *string
}

// SignResult is the new signature with the minute's progress after it.
type SignResult struct {
	Signature    *models.Signature        `json:"signature"`
	Progress     models.SignatureProgress `json:"signature_progress"`
	MinuteStatus models.MinuteStatus      `json:"minute_status"`
}

// ListSignaturesInput represents filters for listing signatures
type ListSignaturesInput struct {
	MinuteID *uint64
	UserID   *uint64
}

// Sign records the actor's signature on a minute awaiting signatures
func (s *SignatureService) Sign(ctx context.Context, actor Actor, input SignInput) (*SignResult, error) {
	if err := authorize(actor, permissions.SignMinute); err != nil {
		return nil, err
	}

	comments := trimmedPtr(input.Comments)
	if comments != nil && runeLen(*comments) > constants.MaxSignatureCommentLength {
		return nil, invalid("comments", "must be at most %d characters", constants.MaxSignatureCommentLength)
	}

	minute, err := s.minuteRepo.FindByID(input.MinuteID)
	if err != nil {
		return nil, lookupError(err, ErrMinuteNotFound, "minute")
	}
	if !minute.Signable() {
		return nil, ErrMinuteNotPending
	}
	if !actor.IsManager() {
		return nil, ErrSignerNotManager
	}

	existing, err := s.signatureRepo.FindByMinuteAndUser(minute.ID, actor.ID)
	switch {
	case err == nil:
		return nil, &AlreadySignedError{SignatureID: existing.ID, SignedAt: existing.SignedAt}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to check existing signature: %w", err)
	}

	signature := &models.Signature{
		MinuteID: minute.ID,
		UserID:   actor.ID,
		SignedAt: s.now(),
		Comments: comments,
	}

	promoted, err := s.signatureRepo.CreateAndPromote(signature)
	if err != nil {
		switch {
		case repository.IsDuplicateKey(err):
			return nil, s.alreadySigned(minute.ID, actor.ID)
		case errors.Is(err, repository.ErrStateChanged):
			return nil, ErrMinuteNotPending
		}
		return nil, fmt.Errorf("failed to record signature: %w", err)
	}

	s.metrics.SignatureRecorded(promoted)
	if promoted {
		s.metrics.MinuteTransition(string(models.MinuteStatusPendingSignature), string(models.MinuteStatusSigned))
	}

	logger := logging.FromContext(ctx)
	logger.Info("minute signed",
		slog.Uint64("minute_id", minute.ID),
		slog.Uint64("signature_id", signature.ID),
		slog.Uint64("user_id", actor.ID),
	)
	if promoted {
		logger.Info("minute signature quorum reached", slog.Uint64("minute_id", minute.ID))
	}

	progress, err := s.Progress(minute.ID)
	if err != nil {
		return nil, err
	}

	status := models.MinuteStatusPendingSignature
	if current, err := s.minuteRepo.FindByID(minute.ID); err == nil {
		status = current.Status
	}

	created, err := s.signatureRepo.FindByID(signature.ID, "User")
	if err != nil {
		return nil, fmt.Errorf("failed to reload signature: %w", err)
	}

	return &SignResult{Signature: created, Progress: progress, MinuteStatus: status}, nil
}

// alreadySigned builds the error for a duplicate caught by the unique index.
func (s *SignatureService) alreadySigned(minuteID, userID uint64) error {
	existing, err := s.signatureRepo.FindByMinuteAndUser(minuteID, userID)
	if err != nil {
		return ErrAlreadySigned
	}
	return &AlreadySignedError{SignatureID: existing.ID, SignedAt: existing.SignedAt}
}

// Unsign removes a signature. Only the signer or an ADMIN may do so, and
// only while the minute still awaits signatures. A completed promotion is
// never reversed.
func (s *SignatureService) Unsign(ctx context.Context, actor Actor, signatureID uint64) error {
	signature, err := s.signatureRepo.FindByID(signatureID)
	if err != nil {
		return lookupError(err, ErrSignatureNotFound, "signature")
	}

	if signature.UserID != actor.ID && actor.Role != models.UserRoleAdmin {
		return ErrNotSignatureOwner
	}

	deleted, err := s.signatureRepo.DeleteIfPending(signature.ID)
	if err != nil {
		return fmt.Errorf("failed to delete signature: %w", err)
	}
	if !deleted {
		if _, err := s.signatureRepo.FindByID(signature.ID); errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSignatureNotFound
		}
		return ErrSignatureLocked
	}

	logging.FromContext(ctx).Info("signature removed",
		slog.Uint64("signature_id", signature.ID),
		slog.Uint64("minute_id", signature.MinuteID),
		slog.Uint64("actor_id", actor.ID),
	)
	return nil
}

// ListSignatures lists signatures by minute and/or user
func (s *SignatureService) ListSignatures(input ListSignaturesInput) ([]models.Signature, error) {
	signatures, err := s.signatureRepo.List(repository.SignatureFilter{
		MinuteID: input.MinuteID,
		UserID:   input.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list signatures: %w", err)
	}
	return signatures, nil
}

// Progress counts a minute's signatures against the live quorum
func (s *SignatureService) Progress(minuteID uint64) (models.SignatureProgress, error) {
	count, err := s.signatureRepo.CountByMinute(minuteID)
	if err != nil {
		return models.SignatureProgress{}, fmt.Errorf("failed to count signatures: %w", err)
	}
	required, err := s.userRepo.CountActiveManagers()
	if err != nil {
		return models.SignatureProgress{}, fmt.Errorf("failed to count signers: %w", err)
	}
	return models.NewSignatureProgress(count, required), nil
}
