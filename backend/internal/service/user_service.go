package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"campus-events/backend/internal/dto"
	"campus-events/backend/internal/model"
	"campus-events/backend/internal/repository"
	"campus-events/backend/pkg/imageproc"
	"campus-events/backend/pkg/storage"
)

// UserService 用户业务接口
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	UploadAvatar(ctx context.Context, userID string, r io.Reader, filename string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	ChangeRole(ctx context.Context, targetID, role, callerID string) (*dto.UserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	store  storage.Storage
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, store storage.Storage, logger *zap.Logger) UserService {
	return &userService{repo: repo, store: store, logger: logger}
}

func (s *userService) getUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// ────────────────────── Profile ──────────────────────

func (s *userService) GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username != user.Username {
			exists, err := s.repo.User.ExistsByUsername(ctx, username, user.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrUsernameExists
			}
			user.Username = username
		}
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			exists, err := s.repo.User.ExistsByEmail(ctx, email, user.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrEmailExists
			}
			user.Email = email
		}
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameExists
		}
		s.logger.Error("更新用户资料失败", zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, key, err := uploadImage(ctx, s.store, "avatars", r, filename, imageproc.MaxAvatar)
	if err != nil {
		return nil, err
	}

	oldKey := user.AvatarKey
	user.ProfilePicture = url
	user.AvatarKey = key
	if err := s.repo.User.Update(ctx, user); err != nil {
		removeObject(ctx, s.store, key, s.logger)
		s.logger.Error("更新头像失败", zap.Error(err))
		return nil, err
	}
	removeObject(ctx, s.store, oldKey, s.logger)

	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── Admin ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, repository.UserFilter{
		Role:    req.Role,
		Keyword: req.Keyword,
	}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.UserResponse, len(users))
	for i := range users {
		list[i] = toUserResponse(&users[i])
	}
	return list, total, nil
}

// ChangeRole 修改用户角色
// 在事务内锁定全部管理员行后再判断，任何导致管理员数量归零的修改都会被拒绝
func (s *userService) ChangeRole(ctx context.Context, targetID, role, callerID string) (*dto.UserResponse, error) {
	if !model.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	var updated *model.User
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		target, err := tx.User.GetByID(ctx, targetID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrUserNotFound
			}
			return err
		}

		if target.Role == model.RoleAdmin && role != model.RoleAdmin {
			adminIDs, err := tx.User.LockIDsByRole(ctx, model.RoleAdmin)
			if err != nil {
				return err
			}
			if len(adminIDs) <= 1 {
				return ErrLastAdmin
			}
		}

		if target.Role != role {
			if err := tx.User.UpdateRole(ctx, target.ID, role); err != nil {
				return err
			}
			target.Role = role
		}
		updated = target
		return nil
	})
	if err != nil {
		if _, ok := asAppError(err); !ok {
			s.logger.Error("修改角色失败", zap.String("target", targetID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("用户角色已修改",
		zap.String("target", targetID),
		zap.String("role", role),
		zap.String("operator", callerID),
	)
	resp := toUserResponse(updated)
	return &resp, nil
}
