package dto

import (
	"strings"
	"time"

	"github.com/inventra/inventra-api/internal/domain"
	"github.com/inventra/inventra-api/internal/domain/entity"
)

// RegisterRequest alta de usuario.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"rol"` // admin | operador | consulta (default consulta)
}

func (r RegisterRequest) Validate() error {
	if r.Username == "" || r.Email == "" {
		return domain.ErrInvalidInput
	}
	if !strings.Contains(r.Email, "@") {
		return domain.ErrInvalidInput
	}
	if len(r.Password) < 8 {
		return domain.ErrInvalidInput
	}
	return nil
}

// LoginRequest credenciales de acceso.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// UpdateUserRequest actualización parcial de un usuario (administración).
// Cada campo se aplica solo si está presente; la contraseña y el rol no se
// tocan por aquí.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Active   *bool   `json:"activo"`
}

func (r UpdateUserRequest) Validate() error {
	if r.Username != nil && *r.Username == "" {
		return domain.ErrInvalidInput
	}
	if r.Email != nil && !strings.Contains(*r.Email, "@") {
		return domain.ErrInvalidInput
	}
	return nil
}

// ChangePasswordRequest cambio de contraseña del usuario autenticado.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"password_actual"`
	NewPassword     string `json:"password_nueva"`
}

func (r ChangePasswordRequest) Validate() error {
	if r.CurrentPassword == "" || len(r.NewPassword) < 8 {
		return domain.ErrInvalidInput
	}
	return nil
}

// UserResponse usuario en respuestas (nunca incluye el hash).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"rol"`
	Active    bool      `json:"activo"`
	CreatedAt time.Time `json:"fecha_creacion"`
}

// LoginResponse token más el usuario autenticado.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"usuario"`
}

// UserListResponse listado de usuarios.
type UserListResponse struct {
	Users []UserResponse `json:"usuarios"`
	Total int            `json:"total"`
}

// ToUserResponse mapea la entidad a su DTO de respuesta.
func ToUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.RoleName,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

// RoleRequest alta/actualización de un rol.
type RoleRequest struct {
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
	Active      *bool  `json:"activo"`
}

func (r RoleRequest) Validate() error {
	if r.Name == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// RoleResponse rol en respuestas.
type RoleResponse struct {
	ID          string `json:"id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
	Active      bool   `json:"activo"`
}

// RoleListResponse listado de roles.
type RoleListResponse struct {
	Roles []RoleResponse `json:"roles"`
	Total int            `json:"total"`
}

// RoleStatsResponse conteo de roles para el dashboard.
type RoleStatsResponse struct {
	Total  int `json:"total"`
	Active int `json:"activos"`
}

// ToRoleResponse mapea la entidad a su DTO de respuesta.
func ToRoleResponse(r *entity.Role) RoleResponse {
	return RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Active:      r.Active,
	}
}
