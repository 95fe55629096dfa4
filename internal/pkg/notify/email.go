package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"listable/internal/config"

	"gopkg.in/gomail.v2"
)

// sender 抽象 gomail.Dialer 的发送能力，便于测试替换。
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier 实现邮件通知。
type EmailNotifier struct {
	cfg    *config.EmailConfig
	dialer sender
	logger *slog.Logger
}

// NewEmailNotifier 创建一个新的邮件通知器。
func NewEmailNotifier(cfg *config.EmailConfig, logger *slog.Logger) *EmailNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailNotifier{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		logger: logger,
	}
}

// New 根据配置返回通知器；SMTP 配置不完整时返回 Nop。
func New(cfg *config.EmailConfig, logger *slog.Logger) Notifier {
	if cfg == nil || !cfg.MailEnabled() {
		return Nop{}
	}
	return NewEmailNotifier(cfg, logger)
}

// SendWelcome 发送欢迎邮件。
func (n *EmailNotifier) SendWelcome(ctx context.Context, toEmail string, username string) error {
	if !n.cfg.MailEnabled() {
		n.logger.Warn("email config missing, skip notification")
		return nil
	}
	if strings.TrimSpace(toEmail) == "" {
		n.logger.Warn("email recipient empty, skip notification")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.FromEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "[Listable] 欢迎使用")
	m.SetBody("text/html", buildWelcomeBody(username))

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("welcome email sent", slog.String("to", toEmail))
	return nil
}

func buildWelcomeBody(username string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2 style="color: #268AFF;">欢迎，%s</h2>
    <p>你的 Listable 账户已创建。</p>
    <p>登录后即可创建清单并添加任务。</p>
  </div>
</body>
</html>`, html.EscapeString(username))
}
