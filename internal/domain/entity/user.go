package entity

import "time"

// Roles conocidos de la aplicación.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operador"
	RoleViewer   = "consulta"
)

// Role rol de usuario con sus permisos serializados.
type Role struct {
	ID          string
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// User usuario de la aplicación.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	RoleID       string
	RoleName     string // join para respuestas (no persiste)
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
