// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/config"
	"github.com/your-org/storefront-api/internal/pkg/money"
)

// Sender delivers a rendered email
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// EmailService renders templates and hands the result to a Sender
type EmailService struct {
	sender    Sender
	siteName  string
	siteURL   string
	templates map[EmailType]*template.Template
	subjects  map[EmailType]string
	now       func() time.Time
}

// NewEmailService builds the service. Without an SMTP host mail is logged
// instead of sent.
func NewEmailService(cfg *config.Config, log logrus.FieldLogger) *EmailService {
	var sender Sender
	if cfg.SMTP.Host != "" {
		sender = NewSMTPSender(cfg.SMTP)
	} else {
		sender = &LogSender{Log: log}
	}
	return NewEmailServiceWithSender(cfg.App.Name, cfg.App.FrontendURL, sender)
}

// NewEmailServiceWithSender builds the service around an explicit sender
func NewEmailServiceWithSender(siteName, siteURL string, sender Sender) *EmailService {
	funcs := template.FuncMap{"vnd": money.FormatVND}
	templates := make(map[EmailType]*template.Template, len(bodies))
	for name, body := range bodies {
		templates[name] = template.Must(template.New(string(name)).Funcs(funcs).Parse(layout + body))
	}
	return &EmailService{
		sender:    sender,
		siteName:  siteName,
		siteURL:   siteURL,
		templates: templates,
		subjects: map[EmailType]string{
			EmailTypeOrderConfirmation: "Xác nhận đơn hàng %s",
			EmailTypeOrderStatusUpdate: "Cập nhật đơn hàng %s",
			EmailTypePaymentResult:     "Kết quả thanh toán đơn hàng %s",
			EmailTypeTemporaryPassword: "Mật khẩu tạm thời cho tài khoản %s",
		},
		now: time.Now,
	}
}

func (s *EmailService) base(userName string) TemplateData {
	return TemplateData{SiteName: s.siteName, SiteURL: s.siteURL, UserName: userName, Year: s.now().Year()}
}

// SendOrderConfirmation mails the order summary after checkout
func (s *EmailService) SendOrderConfirmation(ctx context.Context, to string, data OrderData, attachments ...string) error {
	data.TemplateData = s.base(data.UserName)
	return s.send(ctx, to, EmailTypeOrderConfirmation, data.OrderCode, data, attachments)
}

// SendOrderStatusUpdate mails a status transition
func (s *EmailService) SendOrderStatusUpdate(ctx context.Context, to string, data OrderData) error {
	data.TemplateData = s.base(data.UserName)
	return s.send(ctx, to, EmailTypeOrderStatusUpdate, data.OrderCode, data, nil)
}

// SendPaymentResult mails the verified gateway outcome
func (s *EmailService) SendPaymentResult(ctx context.Context, to string, data PaymentData) error {
	data.TemplateData = s.base(data.UserName)
	return s.send(ctx, to, EmailTypePaymentResult, data.OrderCode, data, nil)
}

// SendTemporaryPassword mails a generated password after forgot-password
func (s *EmailService) SendTemporaryPassword(ctx context.Context, to string, data TemporaryPasswordData) error {
	data.TemplateData = s.base(data.UserName)
	return s.send(ctx, to, EmailTypeTemporaryPassword, data.Username, data, nil)
}

func (s *EmailService) send(ctx context.Context, to string, kind EmailType, subjectArg string, data any, attachments []string) error {
	html, err := s.render(kind, data)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, &Email{
		To:          []string{to},
		Subject:     fmt.Sprintf(s.subjects[kind], subjectArg),
		HTMLContent: html,
		Type:        kind,
		Attachments: attachments,
	})
}

// render renders an email template with data
func (s *EmailService) render(kind EmailType, data any) (string, error) {
	tmpl, ok := s.templates[kind]
	if !ok {
		return "", fmt.Errorf("template %s not found", kind)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", kind, err)
	}
	return buf.String(), nil
}

const layout = `{{define "header"}}<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>{{.SiteName}}</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
<div style="max-width: 600px; margin: 0 auto; background: #fff; padding: 20px; border-radius: 8px;">
<h1 style="color: #333;">{{.SiteName}}</h1>
<p>Xin chào {{.UserName}},</p>{{end}}
{{define "footer"}}<hr><p style="font-size: 12px; color: #666;">© {{.Year}} {{.SiteName}}</p></div></body></html>{{end}}
`

var bodies = map[EmailType]string{
	EmailTypeOrderConfirmation: `{{template "header" .}}
<p>Cảm ơn bạn đã đặt hàng. Mã đơn hàng: <strong>{{.OrderCode}}</strong>.</p>
<table style="width: 100%; border-collapse: collapse;">
{{range .Items}}<tr><td>{{.Name}}</td><td>x{{.Quantity}}</td><td style="text-align: right;">{{vnd .Price}}</td></tr>
{{end}}</table>
<p>Phương thức thanh toán: {{.PaymentMethod}}</p>
<p><strong>Tổng cộng: {{vnd .TotalAmount}}</strong></p>
<p><a href="{{.OrderURL}}">Xem đơn hàng</a></p>
{{template "footer" .}}`,

	EmailTypeOrderStatusUpdate: `{{template "header" .}}
<p>Đơn hàng <strong>{{.OrderCode}}</strong> đã chuyển sang trạng thái <strong>{{.Status}}</strong>.</p>
<p><a href="{{.OrderURL}}">Xem đơn hàng</a></p>
{{template "footer" .}}`,

	EmailTypePaymentResult: `{{template "header" .}}
{{if .Paid}}<p>Thanh toán {{vnd .TotalAmount}} cho đơn hàng <strong>{{.OrderCode}}</strong> đã thành công.</p>
{{else}}<p>Thanh toán cho đơn hàng <strong>{{.OrderCode}}</strong> không thành công. Bạn có thể thử lại từ trang đơn hàng.</p>{{end}}
<p><a href="{{.OrderURL}}">Xem đơn hàng</a></p>
{{template "footer" .}}`,

	EmailTypeTemporaryPassword: `{{template "header" .}}
<p>Mật khẩu tạm thời cho tài khoản <strong>{{.Username}}</strong>: <code>{{.Password}}</code></p>
<p>Vui lòng đăng nhập và đổi mật khẩu ngay.</p>
{{template "footer" .}}`,
}
