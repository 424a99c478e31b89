package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Notifier 通知出口
// 流水线和报表只往这里塞文本，渠道细节不外漏
type Notifier interface {
	SendMessage(ctx context.Context, text string) error
}

// ==================== Telegram 实现 ====================

const defaultBaseURL = "https://api.telegram.org"

// Bot Telegram 机器人通知
type Bot struct {
	http   *resty.Client
	token  string
	chatID string
}

func NewBot(token, chatID string) *Bot {
	return &Bot{
		http:   resty.New().SetBaseURL(defaultBaseURL).SetTimeout(15 * time.Second),
		token:  token,
		chatID: chatID,
	}
}

// WithBaseURL 替换接口地址 (测试用)
func (b *Bot) WithBaseURL(baseURL string) *Bot {
	b.http.SetBaseURL(baseURL)
	return b
}

// SendMessage 发送 Markdown 文本消息
func (b *Bot) SendMessage(ctx context.Context, text string) error {
	resp, err := b.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"chat_id":    b.chatID,
			"text":       text,
			"parse_mode": "Markdown",
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", b.token))
	if err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("telegram: send message refused: status=%d body=%s", resp.StatusCode(), resp.String())
	}
	return nil
}

// SendAlert 发送带标题的告警消息
func (b *Bot) SendAlert(ctx context.Context, title, message string, isError bool) error {
	emoji := "ℹ️"
	if isError {
		emoji = "🔴"
	}
	return b.SendMessage(ctx, fmt.Sprintf("*%s %s*\n\n%s", emoji, title, message))
}
