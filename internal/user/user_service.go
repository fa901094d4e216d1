package user

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"moodfeed/internal/common"
	"moodfeed/internal/dbsql"
)

type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Nickname string `json:"nickname" validate:"max=100"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserPatch is a partial profile update. Nil fields are left unchanged.
type UserPatch struct {
	Nickname  *string `json:"nickname" validate:"omitempty,min=1,max=100"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,max=500"`
}

func (p UserPatch) IsEmpty() bool {
	return p.Nickname == nil && p.AvatarURL == nil
}

func (p UserPatch) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Nickname != nil {
		cols["nickname"] = strings.TrimSpace(*p.Nickname)
	}
	if p.AvatarURL != nil {
		cols["avatar_url"] = *p.AvatarURL
	}
	return cols
}

type AuthResult struct {
	User  *dbsql.User `json:"user"`
	Token string      `json:"token"`
}

type UserService interface {
	RegisterUser(ctx context.Context, in RegisterInput) (*AuthResult, error)
	LoginUser(ctx context.Context, in LoginInput) (*AuthResult, error)
	GetProfile(ctx context.Context, userID uint64) (*dbsql.User, error)
	CurrentUser(ctx context.Context, viewer common.Viewer) (*dbsql.User, error)
	UpdateProfile(ctx context.Context, userID uint64, patch UserPatch) (*dbsql.User, error)
}

type userService struct {
	userRepo UserRepository
	tokens   *common.TokenManager
	log      *logrus.Logger
}

func NewUserService(userRepo UserRepository, tokens *common.TokenManager, log *logrus.Logger) UserService {
	return &userService{userRepo: userRepo, tokens: tokens, log: log}
}

func (s *userService) RegisterUser(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	if err := common.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := common.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.CheckUserExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.Conflict("username %q already exists", username)
	}

	hashed, err := common.HashPassword(in.Password)
	if err != nil {
		return nil, common.Internal(errors.Wrap(err, "hash password"), "failed to register user")
	}

	nickname := strings.TrimSpace(in.Nickname)
	if nickname == "" {
		nickname = username
	}
	user := &dbsql.User{
		Username:     username,
		PasswordHash: hashed,
		Nickname:     nickname,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")
	return s.issue(user)
}

func (s *userService) LoginUser(ctx context.Context, in LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, common.Validation("username and password are required")
	}

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if common.KindOf(err) == common.KindNotFound {
			return nil, common.Unauthorized("invalid username or password")
		}
		return nil, err
	}
	if err := common.CheckPassword(in.Password, user.PasswordHash); err != nil {
		return nil, common.Unauthorized("invalid username or password")
	}

	return s.issue(user)
}

func (s *userService) issue(user *dbsql.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, common.Internal(errors.Wrap(err, "sign token"), "failed to issue token")
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *userService) GetProfile(ctx context.Context, userID uint64) (*dbsql.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

func (s *userService) CurrentUser(ctx context.Context, viewer common.Viewer) (*dbsql.User, error) {
	if !viewer.Authenticated {
		return nil, common.Unauthorized("access token is missing")
	}
	return s.userRepo.GetUserByID(ctx, viewer.UserID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint64, patch UserPatch) (*dbsql.User, error) {
	if patch.IsEmpty() {
		return nil, common.Validation("no fields to update")
	}
	if patch.Nickname != nil && strings.TrimSpace(*patch.Nickname) == "" {
		return nil, common.Validation("nickname cannot be empty")
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, patch); err != nil {
		return nil, err
	}
	return s.userRepo.GetUserByID(ctx, userID)
}
