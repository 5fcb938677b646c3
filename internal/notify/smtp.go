package notify

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool // STARTTLS is mandatory when set
	Timeout  time.Duration
}

type SMTP struct {
	cfg SMTPConfig
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	if cfg.Port == 0 {
		cfg.Port = 25
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = sendTimeout
	}
	return &SMTP{cfg: cfg}
}

func (s *SMTP) Name() string     { return "smtp" }
func (s *SMTP) Configured() bool { return s.cfg.Host != "" }

func (s *SMTP) options() []gomail.Option {
	policy := gomail.NoTLS
	if s.cfg.UseTLS {
		policy = gomail.TLSMandatory
	}
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTimeout(s.cfg.Timeout),
		gomail.WithTLSPolicy(policy),
	}
	// PLAIN is refused on a cleartext connection to anything but localhost.
	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

func (s *SMTP) message(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	m.Subject(msg.Subject)
	if !msg.Date.IsZero() {
		m.SetDateWithValue(msg.Date)
	}
	if msg.ID != "" {
		m.SetMessageIDWithValue(msg.ID)
	}
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return m, nil
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if msg.From == "" || len(msg.To) == 0 {
		return fmt.Errorf("smtp: sender and recipients are required")
	}
	m, err := s.message(msg)
	if err != nil {
		return err
	}

	c, err := gomail.NewClient(s.cfg.Host, s.options()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialWithContext(ctx); err != nil {
		_ = c.Close()
		return fmt.Errorf("smtp dial: %w", err)
	}
	if err := c.Send(m); err != nil {
		_ = c.Close()
		return fmt.Errorf("smtp send: %w", err)
	}
	return c.Close()
}
