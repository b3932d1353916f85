package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"invoice-system/internal/dto"
	"invoice-system/internal/repositories"
	apperrors "invoice-system/pkg/errors"
	"invoice-system/pkg/service"
	"invoice-system/pkg/validation"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, in dto.LoginDTO) (*dto.AuthResponseDTO, error)
}

type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	jwtService service.JWTService
	validator  *validation.CustomValidator
	logger     *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	jwtService service.JWTService,
	validator *validation.CustomValidator,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		validator:  validator,
		logger:     logger,
	}
}

// Login checks the email and bcrypt password and issues an access token.
// Unknown email and wrong password give the same error.
func (s *AuthService) Login(ctx context.Context, in dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	if err := s.validator.ValidateWithMessage(&in, "Invalid credentials."); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.NewStorageError("sign in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		s.logger.Warn("login failed", zap.String("userID", user.ID.String()))
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponseDTO{
		AccessToken: token,
		ExpiresIn:   int64(s.jwtService.GetAccessTokenTTL().Seconds()),
		UserID:      user.ID,
		Name:        user.Name,
	}, nil
}
