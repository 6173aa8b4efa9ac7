package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"campus-events/backend/internal/dto"
	"campus-events/backend/internal/model"
	pkgerrors "campus-events/backend/pkg/errors"
	"campus-events/backend/pkg/imageproc"
	"campus-events/backend/pkg/storage"
)

// ── 权限判断 ──

func isAdmin(role string) bool { return role == model.RoleAdmin }

// canManageEvent 管理员或活动组织者
func canManageEvent(callerID, callerRole string, event *model.Event) bool {
	return isAdmin(callerRole) || event.OrganizerID == callerID
}

// canManageClub 管理员或社团负责人
func canManageClub(callerID, callerRole string, club *model.Club) bool {
	return isAdmin(callerRole) || club.OwnerID == callerID
}

// ── 图片上传 ──

// uploadImage 规范化图片后写入存储，返回访问地址与对象键
func uploadImage(ctx context.Context, store storage.Storage, folder string, r io.Reader, filename string, maxDim int) (string, string, error) {
	img, err := imageproc.Normalize(r, filename, maxDim)
	if err != nil {
		switch {
		case errors.Is(err, imageproc.ErrUnsupportedType):
			return "", "", ErrUnsupportedImage
		case errors.Is(err, imageproc.ErrDecode):
			return "", "", ErrInvalidImage
		}
		return "", "", err
	}

	key := storage.NewKey(folder, img.Ext)
	url, err := store.Put(ctx, key, bytes.NewReader(img.Data), img.ContentType)
	if err != nil {
		return "", "", err
	}
	return url, key, nil
}

// removeObject 尽力删除存储对象，失败只记录日志
func removeObject(ctx context.Context, store storage.Storage, key string, logger *zap.Logger) {
	if key == "" || store == nil {
		return
	}
	if err := store.Delete(ctx, key); err != nil {
		logger.Warn("删除存储对象失败", zap.String("key", key), zap.Error(err))
	}
}

// ── 转换 ──

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           u.Role,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
	}
}

func toUserBrief(u *model.User) *dto.UserBrief {
	if u == nil {
		return nil
	}
	return &dto.UserBrief{ID: u.ID, Username: u.Username, FullName: u.FullName()}
}

func toClubResponse(c *model.Club, eventCount int64) dto.ClubResponse {
	return dto.ClubResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		LogoURL:     c.LogoURL,
		Owner:       toUserBrief(c.Owner),
		OwnerID:     c.OwnerID,
		EventCount:  eventCount,
		CreatedAt:   c.CreatedAt,
	}
}

func toEventResponse(ev *model.Event, now time.Time, registered int64) dto.EventResponse {
	resp := dto.EventResponse{
		ID:                ev.ID,
		Title:             ev.Title,
		Description:       ev.Description,
		StartTime:         ev.StartTime,
		EndTime:           ev.EndTime,
		Location:          ev.Location,
		Category:          ev.Category,
		Capacity:          ev.Capacity,
		PosterURL:         ev.PosterURL,
		ClubID:            ev.ClubID,
		OrganizerID:       ev.OrganizerID,
		State:             string(ev.StateAt(now)),
		RegistrationCount: registered,
		Version:           ev.Version,
	}
	if ev.Club != nil {
		resp.ClubName = ev.Club.Name
	}
	return resp
}

// eventIDs 提取活动 ID
func eventIDs(events []model.Event) []string {
	ids := make([]string, len(events))
	for i := range events {
		ids[i] = events[i].ID
	}
	return ids
}

// asAppError 判断是否为业务错误（业务错误不记录 Error 日志）
func asAppError(err error) (*pkgerrors.AppError, bool) {
	return pkgerrors.As(err)
}
