package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"jobalert/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultSubject = "Job openings report"

// TransportStdout names the dry-run destination in a Delivery.
const TransportStdout = "stdout"

var ErrAllTransportsFailed = errors.New("no notification transport delivered the report")

// Transport delivers one message. Unconfigured transports are skipped by
// the Sender without being called.
type Transport interface {
	Name() string
	Configured() bool
	Send(ctx context.Context, msg Message) error
}

type Delivery struct {
	Transport string
	DryRun    bool
}

type Sender struct {
	from       string
	to         []string
	transports []Transport
	stdout     io.Writer
	logger     *zap.Logger
	now        func() time.Time
}

type Option func(*Sender)

func WithStdout(w io.Writer) Option         { return func(s *Sender) { s.stdout = w } }
func WithLogger(l *zap.Logger) Option       { return func(s *Sender) { s.logger = l } }
func WithClock(now func() time.Time) Option { return func(s *Sender) { s.now = now } }

// NewSender tries transports in order until one succeeds.
func NewSender(from string, to []string, transports []Transport, opts ...Option) *Sender {
	s := &Sender{
		from:       from,
		to:         to,
		transports: transports,
		stdout:     os.Stdout,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// FromConfig wires the standard chain: SendGrid, SMTP, IMAP append, then the
// report file.
func FromConfig(cfg config.Config, opts ...Option) *Sender {
	e := cfg.Email
	return NewSender(e.Sender, e.Recipients, []Transport{
		NewSendGrid(SendGridConfig{APIKey: e.SendGridAPIKey}),
		NewSMTP(SMTPConfig{
			Host:     e.SMTP.Host,
			Port:     e.SMTP.Port,
			Username: e.SMTP.Username,
			Password: e.SMTP.Password,
			UseTLS:   e.SMTP.UseTLS,
		}),
		NewIMAP(IMAPConfig{
			Host:     e.IMAP.Host,
			Port:     e.IMAP.Port,
			Username: e.IMAP.Username,
			Password: e.IMAP.Password,
			Mailbox:  e.IMAP.Mailbox,
		}),
		NewFile(cfg.ReportFile),
	}, opts...)
}

// Send delivers body. In dry-run mode body is written to stdout and no
// transport is touched.
func (s *Sender) Send(ctx context.Context, subject, body string, dryRun bool) (Delivery, error) {
	if dryRun {
		if _, err := fmt.Fprintln(s.stdout, body); err != nil {
			return Delivery{}, fmt.Errorf("dry-run write: %w", err)
		}
		return Delivery{Transport: TransportStdout, DryRun: true}, nil
	}

	msg := Message{
		From:    s.from,
		To:      s.to,
		Subject: subject,
		Body:    body,
		Date:    s.now(),
		ID:      uuid.NewString() + "@jobalert",
	}

	var errs []error
	for _, t := range s.transports {
		if !t.Configured() {
			s.logger.Debug("transport not configured", zap.String("transport", t.Name()))
			continue
		}
		if err := t.Send(ctx, msg); err != nil {
			s.logger.Warn("transport failed", zap.String("transport", t.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		s.logger.Info("report delivered", zap.String("transport", t.Name()))
		return Delivery{Transport: t.Name()}, nil
	}

	if len(errs) == 0 {
		return Delivery{}, ErrAllTransportsFailed
	}
	return Delivery{}, fmt.Errorf("%w: %w", ErrAllTransportsFailed, errors.Join(errs...))
}
