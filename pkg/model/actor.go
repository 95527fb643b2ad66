package model

type ActorRole string

const (
	RoleUser   ActorRole = "USER"
	RoleStaff  ActorRole = "STAFF"
	RoleSystem ActorRole = "SYSTEM"
)

// Actor identifies who triggered an operation. Identity arrives already
// authenticated; the engine only distinguishes roles.
type Actor struct {
	ID   string    `json:"id" bson:"id"`
	Role ActorRole `json:"role" bson:"role"`
}

var SystemActor = Actor{ID: "system", Role: RoleSystem}

func (a Actor) IsStaff() bool {
	return a.Role == RoleStaff || a.Role == RoleSystem
}

func (a Actor) String() string {
	if a.ID == "" {
		return string(a.Role)
	}
	return a.ID
}
