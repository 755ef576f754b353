package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
)

type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender renders a template per Kind and sends it as HTML mail.
type SMTPSender struct {
	cfg      SMTPConfig
	sendMail sendMailFunc
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, sendMail: smtp.SendMail}
}

type mailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[Kind]mailTemplate{
	KindOrderConfirmation: {
		subject: "Your lab test booking is confirmed",
		body: template.Must(template.New("confirmation").Parse(
			`<p>Hello {{.name}},</p>
<p>We received your booking for <b>{{.date}}</b> between <b>{{.timeWindow}}</b>.</p>
<p>Order reference: {{.orderId}}. Total: {{.total}}.</p>`)),
	},
	KindApproval: {
		subject: "Your appointment has been approved",
		body: template.Must(template.New("approval").Parse(
			`<p>Hello {{.name}},</p>
<p>Your sample collection on <b>{{.date}}</b> ({{.timeWindow}}) is approved.</p>`)),
	},
	KindReportReady: {
		subject: "Your lab report is ready",
		body: template.Must(template.New("report").Parse(
			`<p>Hello {{.name}},</p>
<p>Your report is ready. <a href="{{.reportUrl}}">Download it here</a>.</p>`)),
	},
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	tpl, ok := templates[msg.Kind]
	if !ok {
		return fmt.Errorf("unknown notification kind %q", msg.Kind)
	}
	if msg.Recipient == "" {
		return ErrNoRecipient
	}

	var body bytes.Buffer
	if err := tpl.body.Execute(&body, msg.Params); err != nil {
		return fmt.Errorf("render %s: %w", msg.Kind, err)
	}

	raw := buildMIME(s.cfg.From, msg.Recipient, tpl.subject, body.String())

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.sendMail(net.JoinHostPort(s.cfg.Host, s.cfg.Port), auth, s.cfg.From, []string{msg.Recipient}, raw)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMIME(from, to, subject, html string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(html)
	return []byte(b.String())
}
