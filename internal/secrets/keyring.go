package secrets

import (
	"errors"
	"fmt"
	"strings"

	"jobalert/internal/config"

	"github.com/zalando/go-keyring"
	"go.uber.org/zap"
)

// KeyringService groups the app's secrets in the OS keychain.
const KeyringService = "jobalert"

type Kind string

const (
	SendGrid Kind = "sendgrid"
	SMTP     Kind = "smtp"
	IMAP     Kind = "imap"
)

var ErrUnknownKind = errors.New("unknown secret kind")

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case SendGrid, SMTP, IMAP:
		return k, nil
	}
	return "", fmt.Errorf("%w %q (want sendgrid, smtp or imap)", ErrUnknownKind, s)
}

// Account is the keychain account a secret is stored under. Mail
// credentials are keyed by user and host so several servers can coexist.
func Account(kind Kind, cfg config.EmailConfig) (string, error) {
	var who string
	switch kind {
	case SendGrid:
		who = cfg.Sender
	case SMTP:
		if cfg.SMTP.Username != "" && cfg.SMTP.Host != "" {
			who = cfg.SMTP.Username + "@" + cfg.SMTP.Host
		}
	case IMAP:
		if cfg.IMAP.Username != "" && cfg.IMAP.Host != "" {
			who = cfg.IMAP.Username + "@" + cfg.IMAP.Host
		}
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	if who == "" {
		return "", fmt.Errorf("%s account is incomplete; set the sender, username and host first", kind)
	}
	return fmt.Sprintf("%s:%s:%s", KeyringService, kind, who), nil
}

func Get(account string) (string, error) {
	v, err := keyring.Get(KeyringService, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

func Set(account, secret string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(secret) == "" {
		return errors.New("secret is empty")
	}
	return keyring.Set(KeyringService, account, secret)
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// Fill returns cfg with empty credentials taken from the keychain.
// Values already set through the environment win; lookup failures only
// leave the field empty.
func Fill(cfg config.EmailConfig, logger *zap.Logger) config.EmailConfig {
	if logger == nil {
		logger = zap.NewNop()
	}
	fill := func(kind Kind, dst *string) {
		if *dst != "" {
			return
		}
		account, err := Account(kind, cfg)
		if err != nil {
			return
		}
		v, err := Get(account)
		switch {
		case errors.Is(err, keyring.ErrNotFound):
			logger.Debug("no keychain secret", zap.String("account", account))
		case err != nil:
			logger.Warn("keychain lookup failed", zap.String("account", account), zap.Error(err))
		default:
			*dst = v
		}
	}

	fill(SendGrid, &cfg.SendGridAPIKey)
	fill(SMTP, &cfg.SMTP.Password)
	fill(IMAP, &cfg.IMAP.Password)
	return cfg
}
