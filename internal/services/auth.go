package services

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/repositories"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/service"
	"asset-system/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, data dto.LoginDTO) (*dto.TokenResponseDTO, error)
}

type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthService(userRepo repositories.UserRepositoryInterface, jwtService service.JWTService, logger *zap.Logger) AuthServiceInterface {
	return &AuthService{userRepo: userRepo, jwtService: jwtService, logger: logger}
}

func (s *AuthService) Login(ctx context.Context, data dto.LoginDTO) (*dto.TokenResponseDTO, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, data.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewHttpError(http.StatusUnauthorized, "Invalid email or password", nil)
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(data.Password, user.Password) {
		return nil, apperrors.NewHttpError(http.StatusUnauthorized, "Invalid email or password", nil)
	}

	accessToken, refreshToken, err := s.jwtService.GenerateTokens(user.ID, user.Role, user.BranchID)
	if err != nil {
		s.logger.Error("failed to issue tokens", zap.Uint64("userId", user.ID), zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponseDTO{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
