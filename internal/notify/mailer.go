package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Mailer 投递渲染好的邮件
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

const sendgridEndpoint = "/v3/mail/send"

// SendgridMailer 通过 SendGrid v3 API 发信
type SendgridMailer struct {
	key  string
	from *sgmail.Email
	// Host 覆盖 API 地址，为空时用 api.sendgrid.com
	Host string
}

func NewSendgridMailer(key, senderName, senderEmail string) *SendgridMailer {
	return &SendgridMailer{key: key, from: sgmail.NewEmail(senderName, senderEmail)}
}

func (m *SendgridMailer) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail("", msg.To))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	v3.AddContent(
		sgmail.NewContent("text/plain", msg.Text),
		sgmail.NewContent("text/html", msg.HTML),
	)
	return v3
}

func (m *SendgridMailer) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("sendgrid: message has no recipient")
	}
	req := sendgrid.GetRequest(m.key, sendgridEndpoint, m.Host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// ConsoleMailer 把邮件写进日志而不发送，未配置 SendGrid key 时使用
type ConsoleMailer struct {
	Log *zap.Logger
}

func (m ConsoleMailer) Send(_ context.Context, msg Message) error {
	m.Log.Info("email (console mailer)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}
