package service

import (
	pkgerrors "campus-events/backend/pkg/errors"
)

var newErr = pkgerrors.New

// ── 通用 ──

var (
	ErrNoPermission = newErr(pkgerrors.KindForbidden, 10003, "无权操作")
)

// ── 认证 ──

var (
	ErrInvalidCredentials  = newErr(pkgerrors.KindUnauthorized, 11001, "邮箱或密码错误")
	ErrUsernameExists      = newErr(pkgerrors.KindConflict, 11002, "用户名已被使用")
	ErrEmailExists         = newErr(pkgerrors.KindConflict, 11003, "邮箱已被注册")
	ErrWrongPassword       = newErr(pkgerrors.KindValidation, 11004, "原密码错误")
	ErrInvalidRefreshToken = newErr(pkgerrors.KindUnauthorized, 11005, "Refresh Token 无效或已过期")
)

// ── 用户 ──

var (
	ErrUserNotFound = newErr(pkgerrors.KindNotFound, 12001, "用户不存在")
	ErrInvalidRole  = newErr(pkgerrors.KindValidation, 12002, "无效的角色")
	ErrLastAdmin    = newErr(pkgerrors.KindPrecondition, 12003, "系统至少需要保留一名管理员")
)

// ── 社团 ──

var (
	ErrClubNotFound   = newErr(pkgerrors.KindNotFound, 13001, "社团不存在")
	ErrClubNameExists = newErr(pkgerrors.KindConflict, 13002, "社团名称已存在")
	ErrClubHasEvents  = newErr(pkgerrors.KindPrecondition, 13003, "社团下仍有活动，无法删除")
)

// ── 活动 ──

var (
	ErrEventNotFound     = newErr(pkgerrors.KindNotFound, 14001, "活动不存在")
	ErrEventTimeOrder    = newErr(pkgerrors.KindValidation, 14002, "开始时间必须早于结束时间")
	ErrEventStartInPast  = newErr(pkgerrors.KindValidation, 14003, "开始时间不能早于当前时间")
	ErrInvalidCategory   = newErr(pkgerrors.KindValidation, 14004, "无效的活动分类")
	ErrInvalidCapacity   = newErr(pkgerrors.KindValidation, 14005, "人数上限必须为正整数")
	ErrInvalidQueryRange = newErr(pkgerrors.KindValidation, 14006, "查询时间范围无效")
)

// ── 报名 / 签到 / 评分 ──

var (
	ErrAlreadyRegistered   = newErr(pkgerrors.KindConflict, 15001, "已报名该活动")
	ErrRegistrationClosed  = newErr(pkgerrors.KindPrecondition, 15002, "活动已开始，报名已截止")
	ErrEventFull           = newErr(pkgerrors.KindPrecondition, 15003, "活动人数已满")
	ErrNotRegistered       = newErr(pkgerrors.KindPrecondition, 15004, "尚未报名该活动")
	ErrEventStarted        = newErr(pkgerrors.KindPrecondition, 15005, "活动已开始，无法取消报名")
	ErrEventNotEnded       = newErr(pkgerrors.KindPrecondition, 15006, "活动结束后才能评分")
	ErrNotAttended         = newErr(pkgerrors.KindPrecondition, 15007, "仅签到过的参与者可以评分")
	ErrInvalidScore        = newErr(pkgerrors.KindValidation, 15008, "评分必须在 1-5 之间")
	ErrCheckInTarget       = newErr(pkgerrors.KindValidation, 15009, "user_id 与 username 必须且只能提供一个")
	ErrParticipantNotFound = newErr(pkgerrors.KindNotFound, 15010, "参与者不存在")
)

// ── 上传 ──

var (
	ErrUnsupportedImage = newErr(pkgerrors.KindValidation, 16001, "仅支持 png / jpg / jpeg / gif 图片")
	ErrInvalidImage     = newErr(pkgerrors.KindValidation, 16002, "无法解析图片内容")
)

// ── 导出 ──

var (
	ErrExportGenerateFail = newErr(pkgerrors.KindInternal, 17001, "生成 Excel 文件失败")
)

// ── 提醒 ──

var (
	ErrReminderNotFound = newErr(pkgerrors.KindNotFound, 18001, "提醒不存在")
	ErrReminderTime     = newErr(pkgerrors.KindValidation, 18002, "提醒时间必须晚于当前时间且早于活动开始")
)

// ── 照片 ──

var (
	ErrPhotoNotFound = newErr(pkgerrors.KindNotFound, 19001, "照片不存在")
)
