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

// ClubService 社团业务接口
type ClubService interface {
	Create(ctx context.Context, req *dto.CreateClubRequest, callerID string) (*dto.ClubResponse, error)
	Get(ctx context.Context, id string) (*dto.ClubResponse, error)
	List(ctx context.Context, req *dto.ClubListRequest) ([]dto.ClubResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateClubRequest, callerID, callerRole string) (*dto.ClubResponse, error)
	UploadLogo(ctx context.Context, id string, r io.Reader, filename, callerID, callerRole string) (*dto.ClubResponse, error)
	Delete(ctx context.Context, id, callerID, callerRole string) error
}

type clubService struct {
	repo   *repository.Repository
	store  storage.Storage
	logger *zap.Logger
}

// NewClubService 创建 ClubService 实例
func NewClubService(repo *repository.Repository, store storage.Storage, logger *zap.Logger) ClubService {
	return &clubService{repo: repo, store: store, logger: logger}
}

func (s *clubService) getClub(ctx context.Context, id string) (*model.Club, error) {
	club, err := s.repo.Club.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrClubNotFound
		}
		s.logger.Error("查询社团失败", zap.String("club_id", id), zap.Error(err))
		return nil, err
	}
	return club, nil
}

func (s *clubService) respond(ctx context.Context, club *model.Club) (*dto.ClubResponse, error) {
	count, err := s.repo.Event.CountByClub(ctx, club.ID)
	if err != nil {
		return nil, err
	}
	resp := toClubResponse(club, count)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *clubService) Create(ctx context.Context, req *dto.CreateClubRequest, callerID string) (*dto.ClubResponse, error) {
	name := strings.TrimSpace(req.Name)
	exists, err := s.repo.Club.ExistsByName(ctx, name, "")
	if err != nil {
		s.logger.Error("检查社团名称失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrClubNameExists
	}

	club := &model.Club{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		OwnerID:     callerID,
	}
	if err := s.repo.Club.Create(ctx, club); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrClubNameExists
		}
		s.logger.Error("创建社团失败", zap.Error(err))
		return nil, err
	}

	resp := toClubResponse(club, 0)
	return &resp, nil
}

// ────────────────────── Read ──────────────────────

func (s *clubService) Get(ctx context.Context, id string) (*dto.ClubResponse, error) {
	club, err := s.getClub(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, club)
}

func (s *clubService) List(ctx context.Context, req *dto.ClubListRequest) ([]dto.ClubResponse, int64, error) {
	clubs, total, err := s.repo.Club.List(ctx, repository.ClubFilter{Keyword: req.Keyword}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询社团列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.ClubResponse, len(clubs))
	for i := range clubs {
		list[i] = toClubResponse(&clubs[i].Club, clubs[i].EventCount)
	}
	return list, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *clubService) Update(ctx context.Context, id string, req *dto.UpdateClubRequest, callerID, callerRole string) (*dto.ClubResponse, error) {
	club, err := s.getClub(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManageClub(callerID, callerRole, club) {
		return nil, ErrNoPermission
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != club.Name {
			exists, err := s.repo.Club.ExistsByName(ctx, name, club.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrClubNameExists
			}
			club.Name = name
		}
	}
	if req.Description != nil {
		club.Description = strings.TrimSpace(*req.Description)
	}

	if err := s.repo.Club.Update(ctx, club); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrClubNameExists
		}
		s.logger.Error("更新社团失败", zap.Error(err))
		return nil, err
	}
	return s.respond(ctx, club)
}

func (s *clubService) UploadLogo(ctx context.Context, id string, r io.Reader, filename, callerID, callerRole string) (*dto.ClubResponse, error) {
	club, err := s.getClub(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManageClub(callerID, callerRole, club) {
		return nil, ErrNoPermission
	}

	url, key, err := uploadImage(ctx, s.store, "logos", r, filename, imageproc.MaxLogo)
	if err != nil {
		return nil, err
	}

	oldKey := club.LogoKey
	club.LogoURL = url
	club.LogoKey = key
	if err := s.repo.Club.Update(ctx, club); err != nil {
		removeObject(ctx, s.store, key, s.logger)
		s.logger.Error("更新社团 Logo 失败", zap.Error(err))
		return nil, err
	}
	removeObject(ctx, s.store, oldKey, s.logger)

	return s.respond(ctx, club)
}

// ────────────────────── Delete ──────────────────────

func (s *clubService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	club, err := s.getClub(ctx, id)
	if err != nil {
		return err
	}
	if !canManageClub(callerID, callerRole, club) {
		return ErrNoPermission
	}

	count, err := s.repo.Event.CountByClub(ctx, club.ID)
	if err != nil {
		s.logger.Error("统计社团活动失败", zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrClubHasEvents
	}

	if err := s.repo.Club.Delete(ctx, club.ID); err != nil {
		s.logger.Error("删除社团失败", zap.Error(err))
		return err
	}
	removeObject(ctx, s.store, club.LogoKey, s.logger)

	s.logger.Info("社团已删除", zap.String("club_id", club.ID), zap.String("operator", callerID))
	return nil
}
