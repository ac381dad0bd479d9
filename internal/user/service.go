package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"storefront-be/internal/apperror"
	"storefront-be/internal/auth"
	"storefront-be/internal/logger"
	"storefront-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TokenIssuer interface {
	Issue(userID uuid.UUID, role string) (auth.TokenPair, error)
	IssueAccess(userID uuid.UUID, role string) (string, error)
	Parse(tokenStr string) (*auth.CustomClaims, error)
}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)
	Login(ctx context.Context, in LoginInput) (AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)

	ListUsers(ctx context.Context) ([]User, error)
	AddUser(ctx context.Context, in AddUserInput) (User, error)
	UpdateUser(ctx context.Context, actorID, targetID uuid.UUID, in UpdateUserInput) (User, error)
	DeleteUser(ctx context.Context, actorID, targetID uuid.UUID) error
}

type service struct {
	repo   Repository
	tokens TokenIssuer
}

func NewService(repo Repository, tokens TokenIssuer) Service {
	return &service{repo: repo, tokens: tokens}
}

func validateCredentials(name *string, email, password string) error {
	var details []apperror.Detail
	if name != nil && strings.TrimSpace(*name) == "" {
		details = append(details, apperror.Detail{Field: "name", Message: "name is required"})
	}
	if _, err := mail.ParseAddress(email); err != nil {
		details = append(details, apperror.Detail{Field: "email", Message: "please include a valid email"})
	}
	if len(password) < 6 {
		details = append(details, apperror.Detail{Field: "password", Message: "password must be at least 6 characters long"})
	}
	if len(details) > 0 {
		return apperror.Validation("invalid input", details...)
	}
	return nil
}

func validRole(role string) bool {
	return role == utils.RoleCustomer || role == utils.RoleAdmin
}

func (s *service) create(ctx context.Context, in RegisterInput, role string) (User, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "service"))

	if err := validateCredentials(&in.Name, in.Email, in.Password); err != nil {
		return User{}, err
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return User{}, err
	}

	u, err := s.repo.Create(ctx, User{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: hashed,
		Role:     role,
	})
	if err != nil {
		if !errors.Is(err, ErrUserExists) {
			log.Error("failed to create user", zap.String("email", in.Email), zap.Error(err))
		}
		return User{}, err
	}
	return u, nil
}

// issue mints a token pair and stores the refresh token so it can be
// checked on refresh.
func (s *service) issue(ctx context.Context, u User) (AuthResult, error) {
	pair, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return AuthResult{}, err
	}
	if err := s.repo.UpdateRefreshToken(ctx, u.ID, &pair.RefreshToken); err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: u, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *service) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "service"), zap.String("method", "Register"))

	u, err := s.create(ctx, in, utils.RoleCustomer)
	if err != nil {
		return AuthResult{}, err
	}

	res, err := s.issue(ctx, u)
	if err != nil {
		log.Error("failed to issue tokens", zap.String("user_id", u.ID.String()), zap.Error(err))
		return AuthResult{}, err
	}

	log.Info("user registered", zap.String("user_id", u.ID.String()))
	return res, nil
}

func (s *service) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "service"), zap.String("method", "Login"))

	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Info("login with unknown email")
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	if !auth.CheckPasswordHash(in.Password, u.Password) {
		log.Info("password mismatch", zap.String("user_id", u.ID.String()))
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issue(ctx, u)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrRefreshTokenRequired
	}

	claims, err := s.tokens.Parse(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", err
	}
	if u.RefreshToken == nil || *u.RefreshToken != refreshToken {
		return "", ErrInvalidRefreshToken
	}

	return s.tokens.IssueAccess(u.ID, u.Role)
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *service) AddUser(ctx context.Context, in AddUserInput) (User, error) {
	role := in.Role
	if role == "" {
		role = utils.RoleCustomer
	}
	if !validRole(role) {
		return User{}, ErrInvalidRole
	}
	return s.create(ctx, in.RegisterInput, role)
}

func (s *service) UpdateUser(ctx context.Context, actorID, targetID uuid.UUID, in UpdateUserInput) (User, error) {
	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return User{}, err
	}

	self := target.ID == actorID
	if target.Role == utils.RoleAdmin && !self {
		return User{}, ErrUpdateOtherAdmin
	}
	if in.Role != nil {
		if !validRole(*in.Role) {
			return User{}, ErrInvalidRole
		}
		if self && *in.Role != utils.RoleAdmin {
			return User{}, ErrChangeOwnRole
		}
		target.Role = *in.Role
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return User{}, apperror.Validation("name is required")
		}
		target.Name = strings.TrimSpace(*in.Name)
	}

	return s.repo.Update(ctx, target)
}

func (s *service) DeleteUser(ctx context.Context, actorID, targetID uuid.UUID) error {
	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target.ID == actorID {
		return ErrDeleteSelf
	}
	if target.Role == utils.RoleAdmin {
		return ErrDeleteOtherAdmin
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("user deleted",
		zap.String("layer", "service"),
		zap.String("actor_id", actorID.String()),
		zap.String("user_id", targetID.String()),
	)
	return nil
}
