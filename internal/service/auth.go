package service

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"MindPeak/config"
	"MindPeak/internal/model/dto"
	"MindPeak/internal/repository"
	pkgerrors "MindPeak/pkg/errors"
	"MindPeak/pkg/logger"
	"MindPeak/pkg/token"
)

var (
	authService *AuthService
	authOnce    sync.Once
)

func Auth() *AuthService {
	authOnce.Do(func() {
		authService = &AuthService{
			users: repository.UserRepo{},
		}
	})
	return authService
}

type AuthService struct {
	users repository.UserRepo
}

// RefreshToken 用 refresh token 换新 token 对
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenPairData, error) {
	userID, err := token.ValidateRefreshToken(refreshToken)
	if err != nil {
		logger.Logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, pkgerrors.Unauthorized
	}

	userIDInt, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return nil, pkgerrors.InvalidUserID
	}

	if _, err := s.users.GetByPublicID(ctx, userIDInt); err != nil {
		return nil, err
	}

	access, refresh, expiresIn, err := token.GenerateTokenPair(userID)
	if err != nil {
		return nil, err
	}

	return &dto.TokenPairData{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
	}, nil
}

// DevLogin 开发环境直接给已有用户签发 token，生产环境禁用
func (s *AuthService) DevLogin(ctx context.Context, userID int64) (*dto.TokenPairData, error) {
	if config.Cfg.IsProduction() {
		return nil, pkgerrors.DevLoginDisabled
	}

	if _, err := s.users.GetByPublicID(ctx, userID); err != nil {
		return nil, err
	}

	access, refresh, expiresIn, err := token.GenerateTokenPair(strconv.FormatInt(userID, 10))
	if err != nil {
		return nil, err
	}

	logger.Logger.Info("Issued development token pair",
		zap.Int64("user_id", userID),
	)

	return &dto.TokenPairData{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
	}, nil
}
