package secrets

import (
	"errors"
	"testing"

	"jobalert/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func emailConfig() config.EmailConfig {
	return config.EmailConfig{
		Sender: "bot@example.com",
		SMTP:   config.SMTPConfig{Host: "smtp.example.com", Username: "bot"},
		IMAP:   config.IMAPConfig{Host: "imap.example.com", Username: "me"},
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" SMTP ")
	require.NoError(t, err)
	assert.Equal(t, SMTP, k)

	_, err = ParseKind("pop3")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestAccount(t *testing.T) {
	cfg := emailConfig()

	got, err := Account(SMTP, cfg)
	require.NoError(t, err)
	assert.Equal(t, "jobalert:smtp:bot@smtp.example.com", got)

	got, err = Account(IMAP, cfg)
	require.NoError(t, err)
	assert.Equal(t, "jobalert:imap:me@imap.example.com", got)

	got, err = Account(SendGrid, cfg)
	require.NoError(t, err)
	assert.Equal(t, "jobalert:sendgrid:bot@example.com", got)

	_, err = Account(IMAP, config.EmailConfig{})
	assert.Error(t, err)
}

func TestSetGetDelete(t *testing.T) {
	keyring.MockInit()

	require.NoError(t, Set("jobalert:smtp:bot@smtp.example.com", "hunter2"))
	v, err := Get("jobalert:smtp:bot@smtp.example.com")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", v)

	require.NoError(t, Delete("jobalert:smtp:bot@smtp.example.com"))
	_, err = Get("jobalert:smtp:bot@smtp.example.com")
	assert.ErrorIs(t, err, keyring.ErrNotFound)

	assert.Error(t, Set("", "x"))
	assert.Error(t, Set("acct", " "))
	assert.Error(t, Delete(""))
}

func TestFill(t *testing.T) {
	keyring.MockInit()
	cfg := emailConfig()
	cfg.SendGridAPIKey = "from-env"

	require.NoError(t, Set("jobalert:sendgrid:bot@example.com", "from-keychain"))
	require.NoError(t, Set("jobalert:smtp:bot@smtp.example.com", "smtp-pass"))

	got := Fill(cfg, nil)
	assert.Equal(t, "from-env", got.SendGridAPIKey, "environment wins")
	assert.Equal(t, "smtp-pass", got.SMTP.Password)
	assert.Equal(t, "", got.IMAP.Password)
}

func TestFillKeychainError(t *testing.T) {
	keyring.MockInitWithError(errors.New("locked"))
	got := Fill(emailConfig(), nil)
	assert.Equal(t, "", got.SMTP.Password)
}
