package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// IMAPConfig describes a mailbox the report is appended to. Useful when
// outbound mail is blocked but the user reads an IMAP inbox.
type IMAPConfig struct {
	Host     string
	Port     int // implicit TLS, 993 by default
	Username string
	Password string
	Mailbox  string
	Timeout  time.Duration
}

type IMAP struct {
	cfg IMAPConfig
}

func NewIMAP(cfg IMAPConfig) *IMAP {
	if cfg.Port == 0 {
		cfg.Port = 993
	}
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = sendTimeout
	}
	return &IMAP{cfg: cfg}
}

func (i *IMAP) Name() string { return "imap" }

func (i *IMAP) Configured() bool {
	return i.cfg.Host != "" && i.cfg.Username != "" && i.cfg.Password != ""
}

func (i *IMAP) Send(ctx context.Context, msg Message) error {
	if msg.From == "" {
		msg.From = i.cfg.Username
	}
	if len(msg.To) == 0 {
		msg.To = []string{i.cfg.Username}
	}
	raw, err := msg.RFC5322()
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(i.cfg.Host, strconv.Itoa(i.cfg.Port))
	d := tls.Dialer{
		NetDialer: &net.Dialer{Timeout: i.cfg.Timeout},
		Config:    &tls.Config{ServerName: i.cfg.Host, MinVersion: tls.VersionTLS12},
	}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("imap dial tls: %w", err)
	}
	c := imapclient.New(conn, nil)
	defer c.Close()
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	if err := c.Login(i.cfg.Username, i.cfg.Password).Wait(); err != nil {
		return fmt.Errorf("imap login: %w", err)
	}

	cmd := c.Append(i.cfg.Mailbox, int64(len(raw)), &imap.AppendOptions{Time: msg.Date})
	if _, err := cmd.Write(raw); err != nil {
		_ = cmd.Close()
		return fmt.Errorf("imap append write: %w", err)
	}
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("imap append close: %w", err)
	}
	if _, err := cmd.Wait(); err != nil {
		return fmt.Errorf("imap append %s: %w", i.cfg.Mailbox, err)
	}

	if err := c.Logout().Wait(); err != nil {
		return fmt.Errorf("imap logout: %w", err)
	}
	return nil
}
