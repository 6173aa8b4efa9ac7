package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"campus-events/backend/config"
)

// Message 一封纯文本邮件
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer 邮件发送
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTP 基于 gomail 的 SMTP 发送器
type SMTP struct {
	dialer *gomail.Dialer
	from   string
	domain string
}

// NewSMTP 创建 SMTP 发送器
func NewSMTP(cfg *config.MailConfig, baseURLHost string) *SMTP {
	return &SMTP{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		from:   cfg.From,
		domain: baseURLHost,
	}
}

// Send 发送邮件；ctx 已取消时不再拨号
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(s.build(msg)); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}

func (s *SMTP) build(msg Message) *gomail.Message {
	domain := s.domain
	if domain == "" {
		domain = "localhost"
	}

	m := gomail.NewMessage()
	m.SetHeader("Message-ID", fmt.Sprintf("<%s@%s>", uuid.New().String(), domain))
	m.SetHeader("Date", time.Now().Format(time.RFC1123Z))
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return m
}
