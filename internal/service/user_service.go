package service

import (
	"context"
	"errors"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository/database"
	"yatube/internal/repository/redis"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 与页面路由冲突的用户名
var reservedUsernames = map[string]struct{}{
	"new": {}, "follow": {}, "group": {}, "auth": {}, "media": {}, "api": {}, "metrics": {},
}

type UserService struct {
	repo   *database.UserRepository
	tokens *redis.TokenRepository
	jwt    *pkg.TokenManager
}

type RegisterInput struct {
	Username string `validate:"required,max=150,handle"`
	Password string `validate:"required,min=8,max=128"`
	Email    string `validate:"omitempty,email,max=254"`
}

func NewUserService(db *gorm.DB, rdb *goredis.Client, jwt *pkg.TokenManager) *UserService {
	return &UserService{
		repo:   &database.UserRepository{DB: db},
		tokens: &redis.TokenRepository{RDB: rdb, TTL: jwt.AccessTTL},
		jwt:    jwt,
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	if _, ok := reservedUsernames[in.Username]; ok {
		return nil, invalid("username", "This username is reserved.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username: in.Username,
		Password: string(hash),
		Email:    in.Email,
	}
	if err = s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalid("username", "A user with that username already exists.")
		}
		return nil, err
	}
	return user, nil
}

// Login 签发新 token 并覆盖 redis 中的旧 token，旧会话随即失效
func (s *UserService) Login(ctx context.Context, username, password string) (*pkg.Pair, *model.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}
	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Refresh 用 refresh token 换一对新 token
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	claims, err := s.jwt.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return s.issue(ctx, user)
}

func (s *UserService) Logout(ctx context.Context, actor uint64) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	return s.tokens.DeleteUserToken(ctx, actor)
}

// Authenticate 校验 access token 且必须是 redis 中最新的那一个，通过后续期
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*pkg.Claims, error) {
	claims, err := s.jwt.ParseAccess(accessToken)
	if err != nil {
		return nil, ErrUnauthorized
	}
	current, err := s.tokens.GetUserToken(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, redis.ErrTokenNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if current != accessToken {
		return nil, ErrSessionReplaced
	}
	if err = s.tokens.ExtendUserToken(ctx, claims.UserID); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *UserService) issue(ctx context.Context, user *model.User) (*pkg.Pair, error) {
	pair, err := s.jwt.GeneratePair(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	if err = s.tokens.AddUserToken(ctx, user.ID, pair.AccessToken); err != nil {
		return nil, err
	}
	return pair, nil
}
