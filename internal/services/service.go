package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/permissions"
	"gorm.io/gorm"
)

// Actor is the authenticated user performing an operation. Its role is
// loaded fresh for every request.
type Actor struct {
	ID   uint64
	Role models.UserRole
}

// ActorFromUser builds an Actor from a loaded user.
func ActorFromUser(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func (a Actor) Can(action permissions.Action) bool {
	return permissions.HasPermission(a.Role, action)
}

func (a Actor) IsManager() bool {
	return permissions.IsManager(a.Role)
}

// authorize returns ErrForbidden unless the actor's role allows action.
func authorize(actor Actor, action permissions.Action) error {
	if !actor.Can(action) {
		return fmt.Errorf("role %q cannot %s: %w", actor.Role, action, ErrForbidden)
	}
	return nil
}

// lookupError maps a missing record to notFound and wraps anything else.
func lookupError(err error, notFound error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("failed to find %s: %w", what, err)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// trimmedPtr trims s and returns nil when the result is empty.
func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func systemNow() time.Time {
	return time.Now().UTC()
}

func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	out := make([]uint64, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
