package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/cse-council-api/internal/mailer"
	"github.com/yukikurage/cse-council-api/internal/models"
)

// Error kinds. Every error returned by a service wraps exactly one of these,
// which is what handlers map to a status code.
var (
	ErrValidation        = errors.New("validation failed")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadySigned     = errors.New("minute already signed by this user")
	ErrAlreadySent       = errors.New("convocation already sent")
	ErrDeadlinePassed    = errors.New("feedback deadline has passed")
	ErrNotSignable       = errors.New("minute cannot be signed")
	ErrNotRemovable      = errors.New("not removable")
	ErrConflict          = errors.New("conflict")
	ErrDeliveryFailed    = errors.New("email delivery failed")
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", ErrUnauthenticated)
	ErrAccountInactive    = fmt.Errorf("account is deactivated: %w", ErrUnauthenticated)

	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrMeetingNotFound     = fmt.Errorf("meeting %w", ErrNotFound)
	ErrAgendaNotFound      = fmt.Errorf("agenda item %w", ErrNotFound)
	ErrFeedbackNotFound    = fmt.Errorf("feedback %w", ErrNotFound)
	ErrMinuteNotFound      = fmt.Errorf("minute %w", ErrNotFound)
	ErrSignatureNotFound   = fmt.Errorf("signature %w", ErrNotFound)
	ErrParticipantNotFound = fmt.Errorf("participant %w", ErrNotFound)

	ErrEmailTaken           = fmt.Errorf("email already in use: %w", ErrConflict)
	ErrMinuteExists         = fmt.Errorf("a minute already exists for this meeting: %w", ErrConflict)
	ErrConcurrentUpdate     = fmt.Errorf("record was modified concurrently, reload and retry: %w", ErrConflict)
	ErrCannotDeactivateSelf = fmt.Errorf("you cannot deactivate your own account: %w", ErrForbidden)
	ErrNotFeedbackOwner     = fmt.Errorf("only the submitter can modify this feedback: %w", ErrForbidden)
	ErrNotSignatureOwner    = fmt.Errorf("only the signer or an administrator can remove this signature: %w", ErrForbidden)

	ErrMinuteNotEditable   = fmt.Errorf("minute content can only be edited in DRAFT: %w", ErrInvalidTransition)
	ErrMinutePublished     = fmt.Errorf("published minutes cannot be deleted: %w", ErrNotRemovable)
	ErrSignatureLocked     = fmt.Errorf("signatures can only be removed while the minute awaits signatures: %w", ErrNotRemovable)
	ErrMeetingNotDeletable = fmt.Errorf("only meetings without minute and in PLANNED or CONVOCATION_SENT status can be deleted: %w", ErrNotRemovable)
	ErrAgendaLocked        = fmt.Errorf("agenda cannot change once the convocation is sent: %w", ErrInvalidTransition)
	ErrSignerNotManager    = fmt.Errorf("only administrators and the president sign minutes: %w", ErrNotSignable)
	ErrMinuteNotPending    = fmt.Errorf("minute is not awaiting signatures: %w", ErrNotSignable)
	ErrNoParticipants      = fmt.Errorf("meeting has no participants: %w", ErrValidation)
	ErrNoAgenda            = fmt.Errorf("meeting has no agenda items: %w", ErrValidation)
)

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError names the rejected (from, to) pair.
type InvalidTransitionError struct {
	From models.MinuteStatus
	To   models.MinuteStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// AlreadySignedError carries the existing signature.
type AlreadySignedError struct {
	SignatureID uint64
	SignedAt    time.Time
}

func (e *AlreadySignedError) Error() string {
	return fmt.Sprintf("minute already signed by this user at %s", e.SignedAt.Format(time.RFC3339))
}

func (e *AlreadySignedError) Unwrap() error { return ErrAlreadySigned }

// AlreadySentError carries the original dispatch time.
type AlreadySentError struct {
	SentAt time.Time
}

func (e *AlreadySentError) Error() string {
	return fmt.Sprintf("convocation already sent at %s", e.SentAt.Format(time.RFC3339))
}

func (e *AlreadySentError) Unwrap() error { return ErrAlreadySent }

// DeadlinePassedError carries the feedback deadline.
type DeadlinePassedError struct {
	Deadline time.Time
}

func (e *DeadlinePassedError) Error() string {
	return fmt.Sprintf("feedback deadline passed at %s", e.Deadline.Format(time.RFC3339))
}

func (e *DeadlinePassedError) Unwrap() error { return ErrDeadlinePassed }

// DeliveryFailedError is returned when no convocation email went out.
type DeliveryFailedError struct {
	Errors []mailer.RecipientError
}

func (e *DeliveryFailedError) Error() string {
	return fmt.Sprintf("no convocation email could be delivered (%d failures)", len(e.Errors))
}

func (e *DeliveryFailedError) Unwrap() error { return ErrDeliveryFailed }
