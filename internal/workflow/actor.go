package workflow

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Actor is whoever issues a command.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

func Admin(id uuid.UUID) Actor { return Actor{UserID: id, Role: RoleAdmin} }

func Customer(id uuid.UUID) Actor { return Actor{UserID: id, Role: RoleCustomer} }

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
