package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"github.com/inventra/inventra-api/internal/application/dto"
	"github.com/inventra/inventra-api/internal/domain"
	"github.com/inventra/inventra-api/internal/domain/entity"
	"github.com/inventra/inventra-api/internal/domain/repository"
	"github.com/inventra/inventra-api/pkg/config"
	"github.com/inventra/inventra-api/pkg/jwt"
	"github.com/inventra/inventra-api/pkg/logger"
)

// UseCase registro y autenticación de usuarios con bcrypt + JWT.
type UseCase struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	jwtCfg   config.JWTConfig
	log      *logger.Logger
}

// NewUseCase construye el caso de uso de autenticación.
func NewUseCase(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	jwtCfg config.JWTConfig,
	log *logger.Logger,
) *UseCase {
	return &UseCase{userRepo: userRepo, roleRepo: roleRepo, jwtCfg: jwtCfg, log: log}
}

// Register da de alta un usuario con la contraseña hasheada (bcrypt, coste por
// defecto). El rol se resuelve por nombre; si no viene se asigna consulta.
func (uc *UseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	existing, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	byName, err := uc.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if byName != nil {
		return nil, domain.ErrDuplicate
	}

	roleName := in.Role
	if roleName == "" {
		roleName = entity.RoleViewer
	}
	role, err := uc.roleRepo.GetByName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &entity.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		RoleID:       role.ID,
		RoleName:     role.Name,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	uc.log.Info().Str("usuario_id", u.ID).Str("rol", role.Name).Msg("usuario registrado")
	out := dto.ToUserResponse(u)
	return &out, nil
}

// Login valida credenciales y emite un JWT con userID, username y rol.
// Devuelve ErrUnauthorized tanto para email inexistente como para contraseña
// incorrecta (no filtrar cuál de los dos falló).
func (uc *UseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	u, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.Active {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, u.ID, u.Username, u.RoleName, uc.jwtCfg.Issuer, uc.jwtCfg.Expiration)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{Token: token, User: dto.ToUserResponse(u)}, nil
}

// Me devuelve el usuario autenticado (para el endpoint /auth/me).
func (uc *UseCase) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	u, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	out := dto.ToUserResponse(u)
	return &out, nil
}
