package notify

import "context"

// Notifier 定义账户相关通知接口。
type Notifier interface {
	// SendWelcome 在注册成功后向新用户发送欢迎邮件。
	SendWelcome(ctx context.Context, toEmail string, username string) error
}

// Nop 不发送任何通知，SMTP 未配置时使用。
type Nop struct{}

// SendWelcome 实现 Notifier。
func (Nop) SendWelcome(context.Context, string, string) error { return nil }
