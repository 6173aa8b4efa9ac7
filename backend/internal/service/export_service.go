package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"campus-events/backend/internal/model"
	"campus-events/backend/internal/repository"
	"campus-events/backend/pkg/clock"
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 报名时间按配置时区展示
type ExportService interface {
	// ExportParticipants 导出活动参与者名单为 Excel
	ExportParticipants(ctx context.Context, eventID, callerID, callerRole string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	clock  clock.Clock
	loc    *time.Location
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, clk clock.Clock, loc *time.Location, logger *zap.Logger) ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &exportService{repo: repo, clock: clk, loc: loc, logger: logger}
}

const participantsSheet = "Participants"

var participantHeaders = []string{"ID", "First Name", "Last Name", "Email", "Registration Date", "Attended"}

// ═══════════════════════════════════════════════════════════
// ExportParticipants — 导出参与者名单
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单个 Sheet "Participants"
//   - 表头：ID | First Name | Last Name | Email | Registration Date | Attended
//   - 每位报名者一行，按报名时间排序；Attended 为 Yes / No
//
// 返回值：buf（Excel 内容）, filename（event_<id>_participants_<时间戳>.xlsx）, error

func (s *exportService) ExportParticipants(ctx context.Context, eventID, callerID, callerRole string) (*bytes.Buffer, string, error) {
	// 1. 查询活动并校验权限
	event, err := s.repo.Event.GetByID(ctx, eventID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, "", ErrEventNotFound
		}
		s.logger.Error("查询活动失败", zap.Error(err))
		return nil, "", err
	}
	if !canManageEvent(callerID, callerRole, event) {
		return nil, "", ErrNoPermission
	}

	// 2. 查询名单
	rows, err := s.repo.Registration.Roster(ctx, event.ID)
	if err != nil {
		s.logger.Error("查询参与者名单失败", zap.Error(err))
		return nil, "", err
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeRoster(f, participantsSheet, rows); err != nil {
		s.logger.Error("生成 Excel 失败", zap.String("event_id", event.ID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	// 4. 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("event_%s_participants_%s.xlsx", event.ID, s.clock.Now().In(s.loc).Format("20060102_150405"))
	return buf, filename, nil
}

// writeRoster 把名单写入 sheet，并删除默认的 Sheet1
func (s *exportService) writeRoster(f *excelize.File, sheet string, rows []model.RosterEntry) error {
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	widths := []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 38}, {"B", "C", 16}, {"D", "D", 30}, {"E", "E", 20}, {"F", "F", 10},
	}
	for _, w := range widths {
		if err := f.SetColWidth(sheet, w.from, w.to, w.width); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	for i, h := range participantHeaders {
		if err := f.SetCellValue(sheet, cell(colName(i), 1), h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", cell(colName(len(participantHeaders)-1), 1), headerStyle); err != nil {
		return err
	}

	for i := range rows {
		r := &rows[i]
		attended := "No"
		if r.Attended() {
			attended = "Yes"
		}
		values := []interface{}{
			r.UserID,
			r.FirstName,
			r.LastName,
			r.Email,
			r.RegisteredAt.In(s.loc).Format("2006-01-02 15:04"),
			attended,
		}
		if err := f.SetSheetRow(sheet, cell("A", i+2), &values); err != nil {
			return err
		}
	}
	return nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
