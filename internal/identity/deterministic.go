package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

func OrganizationUUID(slug string) uuid.UUID {
	return UUID("setup:organization:" + strings.ToLower(strings.TrimSpace(slug)))
}

func AdminUserUUID(email string) uuid.UUID {
	return UUID("setup:admin_user:" + strings.ToLower(strings.TrimSpace(email)))
}

func GroupUUID(slug string) uuid.UUID {
	return UUID("setup:group:" + strings.ToLower(strings.TrimSpace(slug)))
}

func RoomUUID(slug string) uuid.UUID {
	return UUID("setup:room:" + strings.ToLower(strings.TrimSpace(slug)))
}

func ClosureDayUUID(date string) uuid.UUID {
	return UUID("setup:closure_day:" + strings.TrimSpace(date))
}
