package notify

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-message/mail"
)

type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
	Date    time.Time
	ID      string // without angle brackets
}

// RFC5322 renders the message as a single text/plain utf-8 part.
func (m Message) RFC5322() ([]byte, error) {
	if m.From == "" {
		return nil, errors.New("message has no sender")
	}

	var h mail.Header
	h.SetDate(m.Date)
	h.SetAddressList("From", []*mail.Address{{Address: m.From}})
	to := make([]*mail.Address, 0, len(m.To))
	for _, r := range m.To {
		to = append(to, &mail.Address{Address: r})
	}
	if len(to) > 0 {
		h.SetAddressList("To", to)
	}
	h.SetSubject(m.Subject)
	if m.ID != "" {
		h.SetMessageID(m.ID)
	}
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("message header: %w", err)
	}
	if _, err := io.WriteString(w, m.Body); err != nil {
		return nil, fmt.Errorf("message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("message body: %w", err)
	}
	return buf.Bytes(), nil
}
