package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/inventra/inventra-api/internal/application/dto"
	"github.com/inventra/inventra-api/internal/domain"
	"github.com/inventra/inventra-api/internal/domain/entity"
)

// builtinRoles roles sembrados que la aplicación asume existentes; no se
// eliminan ni se desactivan por la API.
var builtinRoles = map[string]struct{}{
	entity.RoleAdmin:    {},
	entity.RoleOperator: {},
	entity.RoleViewer:   {},
}

// ──────────────────────────────────────────────────────────────────────────────
// Administración de usuarios
// ──────────────────────────────────────────────────────────────────────────────

// ListUsers lista todos los usuarios (sin hash de contraseña).
func (uc *UseCase) ListUsers(ctx context.Context) (*dto.UserListResponse, error) {
	users, err := uc.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.UserListResponse{Users: make([]dto.UserResponse, 0, len(users)), Total: len(users)}
	for _, u := range users {
		out.Users = append(out.Users, dto.ToUserResponse(u))
	}
	return out, nil
}

// UpdateUser actualiza username, email y/o activo de un usuario. La contraseña
// va por ChangePassword y el rol no se cambia por la API.
func (uc *UseCase) UpdateUser(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	u, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Active != nil {
		u.Active = *in.Active
	}
	if err := uc.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	uc.log.Info().Str("usuario_id", id).Msg("usuario actualizado")
	out := dto.ToUserResponse(u)
	return &out, nil
}

// DeleteUser baja en dos pasos: un usuario activo se desactiva (soft delete);
// uno ya desactivado se elimina definitivamente.
func (uc *UseCase) DeleteUser(ctx context.Context, id string) error {
	u, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return domain.ErrUserNotFound
	}
	if u.Active {
		u.Active = false
		if err := uc.userRepo.Update(ctx, u); err != nil {
			return err
		}
		uc.log.Info().Str("usuario_id", id).Msg("usuario desactivado")
		return nil
	}
	if err := uc.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Warn().Str("usuario_id", id).Str("username", u.Username).
		Msg("usuario eliminado definitivamente")
	return nil
}

// ChangePassword cambia la contraseña del usuario autenticado verificando la
// actual. Devuelve ErrUnauthorized si la contraseña actual no coincide.
func (uc *UseCase) ChangePassword(ctx context.Context, userID string, in dto.ChangePasswordRequest) error {
	if err := in.Validate(); err != nil {
		return err
	}
	u, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return domain.ErrUnauthorized
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	if err := uc.userRepo.Update(ctx, u); err != nil {
		return err
	}
	uc.log.Info().Str("usuario_id", userID).Msg("contraseña actualizada")
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Administración de roles
// ──────────────────────────────────────────────────────────────────────────────

// ListRoles lista todos los roles.
func (uc *UseCase) ListRoles(ctx context.Context) (*dto.RoleListResponse, error) {
	roles, err := uc.roleRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.RoleListResponse{Roles: make([]dto.RoleResponse, 0, len(roles)), Total: len(roles)}
	for _, r := range roles {
		out.Roles = append(out.Roles, dto.ToRoleResponse(r))
	}
	return out, nil
}

// GetRole devuelve un rol por id.
func (uc *UseCase) GetRole(ctx context.Context, id string) (*dto.RoleResponse, error) {
	r, err := uc.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.ToRoleResponse(r)
	return &out, nil
}

// CreateRole da de alta un rol.
func (uc *UseCase) CreateRole(ctx context.Context, in dto.RoleRequest) (*dto.RoleResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	r := &entity.Role{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Active != nil {
		r.Active = *in.Active
	}
	if err := uc.roleRepo.Create(ctx, r); err != nil {
		return nil, err
	}
	uc.log.Info().Str("rol_id", r.ID).Str("nombre", r.Name).Msg("rol creado")
	out := dto.ToRoleResponse(r)
	return &out, nil
}

// UpdateRole actualiza nombre, descripción y/o activo. Los roles sembrados no
// se renombran ni desactivan: el middleware RBAC depende de sus nombres.
func (uc *UseCase) UpdateRole(ctx context.Context, id string, in dto.RoleRequest) (*dto.RoleResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	r, err := uc.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	if _, builtin := builtinRoles[r.Name]; builtin {
		renamed := in.Name != r.Name
		deactivated := in.Active != nil && !*in.Active
		if renamed || deactivated {
			return nil, domain.ErrConflict
		}
	}
	r.Name = in.Name
	r.Description = in.Description
	if in.Active != nil {
		r.Active = *in.Active
	}
	if err := uc.roleRepo.Update(ctx, r); err != nil {
		return nil, err
	}
	out := dto.ToRoleResponse(r)
	return &out, nil
}

// DeleteRole baja en dos pasos como los usuarios: un rol activo se desactiva;
// uno inactivo se elimina definitivamente. Los roles sembrados no se tocan.
func (uc *UseCase) DeleteRole(ctx context.Context, id string) error {
	r, err := uc.roleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if r == nil {
		return domain.ErrNotFound
	}
	if _, builtin := builtinRoles[r.Name]; builtin {
		return domain.ErrConflict
	}
	if r.Active {
		r.Active = false
		if err := uc.roleRepo.Update(ctx, r); err != nil {
			return err
		}
		uc.log.Info().Str("rol_id", id).Msg("rol desactivado")
		return nil
	}
	if err := uc.roleRepo.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Warn().Str("rol_id", id).Str("nombre", r.Name).Msg("rol eliminado definitivamente")
	return nil
}

// RoleStats conteo de roles totales y activos.
func (uc *UseCase) RoleStats(ctx context.Context) (*dto.RoleStatsResponse, error) {
	roles, err := uc.roleRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.RoleStatsResponse{Total: len(roles)}
	for _, r := range roles {
		if r.Active {
			out.Active++
		}
	}
	return out, nil
}
