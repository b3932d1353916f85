package entities

import "github.com/google/uuid"

// Actor is who performs a mutation. The zero Actor is unresolved and must be rejected;
// SystemActor is the explicit way to write an entry without a user.
type Actor struct {
	userID uuid.UUID
	system bool
}

func UserActor(id uuid.UUID) Actor { return Actor{userID: id} }

func SystemActor() Actor { return Actor{system: true} }

func (a Actor) IsSystem() bool { return a.system }

func (a Actor) IsResolved() bool { return a.system || a.userID != uuid.Nil }

func (a Actor) UserID() uuid.UUID { return a.userID }

// NullUserID is the value stored in the log's user_id column.
func (a Actor) NullUserID() uuid.NullUUID {
	if a.system || a.userID == uuid.Nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: a.userID, Valid: true}
}

func (a Actor) String() string {
	switch {
	case a.system:
		return "system"
	case a.userID == uuid.Nil:
		return "unresolved"
	default:
		return a.userID.String()
	}
}
