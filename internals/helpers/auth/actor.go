// file: internals/helpers/auth/actor.go
package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Locals keys diisi oleh middleware JWT
const (
	LocUserID   = "user_id"
	LocUserRole = "userRole"
)

// Actor is the authenticated caller stamped on ledger writes.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// IDPtr returns nil for an anonymous actor.
func (a Actor) IDPtr() *uuid.UUID {
	if a.UserID == uuid.Nil {
		return nil
	}
	id := a.UserID
	return &id
}

// Ambil user_id dari c.Locals("user_id").
// 401 kalau belum login, 400 kalau formatnya tidak valid.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	var s string
	switch t := c.Locals(LocUserID).(type) {
	case uuid.UUID:
		if t == uuid.Nil {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "user is not logged in")
		}
		return t, nil
	case string:
		s = t
	case []byte:
		s = string(t)
	case nil:
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "user is not logged in")
	default:
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid user id in token")
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "user is not logged in")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid user id in token")
	}
	return id, nil
}

func GetRole(c *fiber.Ctx) string {
	r, _ := c.Locals(LocUserRole).(string)
	return strings.ToLower(strings.TrimSpace(r))
}

func ActorFromCtx(c *fiber.Ctx) (Actor, error) {
	id, err := GetUserIDFromToken(c)
	if err != nil {
		return Actor{}, err
	}
	return Actor{UserID: id, Role: GetRole(c)}, nil
}
