package security

import (
	"time"

	"github.com/google/uuid"
)

// Roles carried by capability tokens. A token authorizes one actor in one
// role; route middleware checks the role, engine-level checks compare the
// actor against the market's creator or oracle.
const (
	RoleBettor   = "bettor"
	RoleCreator  = "creator"
	RoleProvider = "provider"
	RoleOracle   = "oracle"
	RoleAdmin    = "admin"
)

// Maker makes and verifies capability tokens.
type Maker interface {

	// CreateToken creates a new token for an actor acting in a role.
	CreateToken(actorID uuid.UUID, role string, duration time.Duration) (string, *Payload, error)

	// VerifyToken checks if the token is valid or not.
	VerifyToken(token string) (*Payload, error)
}
