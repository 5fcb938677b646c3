package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	DefaultSendGridHost = "https://api.sendgrid.com"
	sendGridPath        = "/v3/mail/send"
	sendTimeout         = 15 * time.Second
)

type SendGridConfig struct {
	APIKey  string
	Host    string // defaults to DefaultSendGridHost
	Timeout time.Duration
}

type SendGrid struct {
	cfg SendGridConfig
}

func NewSendGrid(cfg SendGridConfig) *SendGrid {
	if cfg.Host == "" {
		cfg.Host = DefaultSendGridHost
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = sendTimeout
	}
	return &SendGrid{cfg: cfg}
}

func (s *SendGrid) Name() string     { return "sendgrid" }
func (s *SendGrid) Configured() bool { return s.cfg.APIKey != "" }

func (s *SendGrid) client() *sendgrid.Client {
	req := sendgrid.GetRequest(s.cfg.APIKey, sendGridPath, s.cfg.Host)
	req.Method = "POST"
	return &sendgrid.Client{Request: req}
}

func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	if msg.From == "" || len(msg.To) == 0 {
		return fmt.Errorf("sendgrid: sender and recipients are required")
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail("", msg.From))
	m.Subject = msg.Subject
	p := sgmail.NewPersonalization()
	for _, r := range msg.To {
		p.AddTos(sgmail.NewEmail("", r))
	}
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Body))

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := s.client().SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid post: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := resp.Body
		if len(body) > 512 {
			body = body[:512]
		}
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, strings.TrimSpace(body))
	}
	return nil
}
