package clock

import "time"

// Clock 当前时间来源；所有与时间相关的业务规则都从这里取 now
type Clock interface {
	Now() time.Time
}

// Real 系统时钟
type Real struct{}

// Now 返回当前 UTC 时间
func (Real) Now() time.Time { return time.Now().UTC() }

// Fixed 固定时钟，测试用
type Fixed struct {
	T time.Time
}

// Now 返回固定时间
func (f *Fixed) Now() time.Time { return f.T }

// Advance 推进固定时钟
func (f *Fixed) Advance(d time.Duration) { f.T = f.T.Add(d) }
