package service

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"

	"campus-events/backend/internal/dto"
	"campus-events/backend/internal/model"
	"campus-events/backend/internal/repository"
	"campus-events/backend/pkg/imageproc"
	"campus-events/backend/pkg/storage"
)

// PhotoService 活动照片业务接口
type PhotoService interface {
	Add(ctx context.Context, eventID string, r io.Reader, filename, caption, callerID, callerRole string) (*dto.PhotoResponse, error)
	List(ctx context.Context, eventID string) ([]dto.PhotoResponse, error)
	Delete(ctx context.Context, eventID, photoID, callerID, callerRole string) error
}

type photoService struct {
	repo   *repository.Repository
	store  storage.Storage
	logger *zap.Logger
}

// NewPhotoService 创建 PhotoService 实例
func NewPhotoService(repo *repository.Repository, store storage.Storage, logger *zap.Logger) PhotoService {
	return &photoService{repo: repo, store: store, logger: logger}
}

func toPhotoResponse(p *model.EventPhoto) dto.PhotoResponse {
	return dto.PhotoResponse{
		ID:         p.ID,
		EventID:    p.EventID,
		PhotoURL:   p.PhotoURL,
		Caption:    p.Caption,
		UploadedBy: p.UploadedBy,
		CreatedAt:  p.CreatedAt,
	}
}

func (s *photoService) getEvent(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *photoService) Add(ctx context.Context, eventID string, r io.Reader, filename, caption, callerID, callerRole string) (*dto.PhotoResponse, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !canManageEvent(callerID, callerRole, event) {
		return nil, ErrNoPermission
	}

	url, key, err := uploadImage(ctx, s.store, "photos", r, filename, imageproc.MaxPhoto)
	if err != nil {
		return nil, err
	}

	photo := &model.EventPhoto{
		EventID:    event.ID,
		PhotoURL:   url,
		StorageKey: key,
		Caption:    strings.TrimSpace(caption),
		UploadedBy: callerID,
	}
	if err := s.repo.Photo.Create(ctx, photo); err != nil {
		removeObject(ctx, s.store, key, s.logger)
		s.logger.Error("保存活动照片失败", zap.String("event_id", event.ID), zap.Error(err))
		return nil, err
	}

	resp := toPhotoResponse(photo)
	return &resp, nil
}

func (s *photoService) List(ctx context.Context, eventID string) ([]dto.PhotoResponse, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	photos, err := s.repo.Photo.ListByEvent(ctx, event.ID)
	if err != nil {
		s.logger.Error("查询活动照片失败", zap.String("event_id", event.ID), zap.Error(err))
		return nil, err
	}
	list := make([]dto.PhotoResponse, len(photos))
	for i := range photos {
		list[i] = toPhotoResponse(&photos[i])
	}
	return list, nil
}

func (s *photoService) Delete(ctx context.Context, eventID, photoID, callerID, callerRole string) error {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if !canManageEvent(callerID, callerRole, event) {
		return ErrNoPermission
	}

	photo, err := s.repo.Photo.GetByID(ctx, photoID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrPhotoNotFound
		}
		return err
	}
	// 照片必须属于路径中的活动
	if photo.EventID != event.ID {
		return ErrPhotoNotFound
	}

	if err := s.repo.Photo.Delete(ctx, photo.ID); err != nil {
		s.logger.Error("删除活动照片失败", zap.String("photo_id", photo.ID), zap.Error(err))
		return err
	}
	removeObject(ctx, s.store, photo.StorageKey, s.logger)
	return nil
}
