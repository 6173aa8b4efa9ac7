package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"campus-events/backend/pkg/clock"
)

// Dispatcher 发送到期提醒
type Dispatcher interface {
	DispatchDue(ctx context.Context, now time.Time) (int, error)
}

// ReminderScheduler 按 cron 表达式周期性发送到期提醒
type ReminderScheduler struct {
	cron       *cron.Cron
	dispatcher Dispatcher
	clock      clock.Clock
	timeout    time.Duration
	logger     *zap.Logger
}

// NewReminderScheduler 创建调度器；spec 支持标准五段式与 @every 描述符
func NewReminderScheduler(spec string, loc *time.Location, d Dispatcher, clk clock.Clock, logger *zap.Logger) (*ReminderScheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{logger.Sugar()}
	s := &ReminderScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		dispatcher: d,
		clock:      clk,
		timeout:    time.Minute,
		logger:     logger,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("无效的提醒调度表达式 %q: %w", spec, err)
	}
	return s, nil
}

// RunOnce 执行一次发送
func (s *ReminderScheduler) RunOnce(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sent, err := s.dispatcher.DispatchDue(ctx, s.clock.Now())
	if err != nil {
		s.logger.Error("提醒任务执行失败", zap.Error(err))
	}
	return sent
}

// Start 启动调度（非阻塞）
func (s *ReminderScheduler) Start() {
	s.cron.Start()
	s.logger.Info("提醒调度已启动")
}

// Stop 停止调度并等待正在执行的任务结束
func (s *ReminderScheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("等待提醒任务结束超时")
	}
}

// cronLogger 将 cron 日志接入 zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
