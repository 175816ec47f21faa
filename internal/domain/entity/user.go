package entity

import "time"

// Roles de usuario.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// User representa un usuario del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	Status       string // active | disabled
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
