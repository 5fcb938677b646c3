package config

import (
	"fmt"
	"net/mail"
	"strings"
)

const maxWorkers = 8

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// Err folds the errors into a single error, nil when there are none.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return fmt.Errorf("config validation failed:\n- %s", strings.Join(v.Errors, "\n- "))
}

func (v *Validation) Merge(o Validation) {
	v.Errors = append(v.Errors, o.Errors...)
	v.Warnings = append(v.Warnings, o.Warnings...)
}

// NormalizeAndValidate returns a normalized copy of cfg alongside what is
// wrong with it. Missing transports are warnings: the report still lands in
// the fallback file.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	out.Email.Recipients = dedupe(out.Email.Recipients)
	if out.ReportFile == "" {
		out.ReportFile = DefaultReportFile
	}
	if out.DataDir == "" {
		out.DataDir = "."
	}
	if out.Email.IMAP.Mailbox == "" {
		out.Email.IMAP.Mailbox = DefaultMailbox
	}

	if out.Workers < 1 || out.Workers > maxWorkers {
		res.addErr("workers must be 1..%d, got %d", maxWorkers, out.Workers)
	}
	if out.Filters.MaxYears < 0 {
		res.addErr("filters.max_years must be >= 0 (0 disables the cap), got %d", out.Filters.MaxYears)
	}
	if p := out.Email.SMTP.Port; p <= 0 || p > 65535 {
		res.addErr("smtp.port must be 1..65535, got %d", p)
	}
	if p := out.Email.IMAP.Port; p <= 0 || p > 65535 {
		res.addErr("imap.port must be 1..65535, got %d", p)
	}

	if out.Providers.RatePerSecond <= 0 {
		res.addErr("providers.rate_per_second must be > 0, got %v", out.Providers.RatePerSecond)
	}
	if out.Providers.Burst < 1 {
		res.addErr("providers.burst must be >= 1, got %d", out.Providers.Burst)
	}

	if out.Email.Sender != "" {
		if _, err := mail.ParseAddress(out.Email.Sender); err != nil {
			res.addErr("email.sender %q is not an address: %v", out.Email.Sender, err)
		}
	}
	for _, r := range out.Email.Recipients {
		if _, err := mail.ParseAddress(r); err != nil {
			res.addErr("email.recipients: %q is not an address: %v", r, err)
		}
	}

	if out.Filters.Keywords == "" {
		res.addWarn("filters.keywords is empty; every title matches.")
	}

	mailReady := out.Email.Sender != "" && len(out.Email.Recipients) > 0
	sendgrid := mailReady && out.Email.SendGridAPIKey != ""
	smtp := mailReady && out.Email.SMTP.Host != ""
	imap := out.Email.IMAP.Host != "" && out.Email.IMAP.Username != ""
	if !sendgrid && !smtp && !imap {
		res.addWarn("no email transport configured; reports go to %s.", out.ReportFile)
	}
	if out.Email.SMTP.Host != "" && !mailReady {
		res.addWarn("smtp.host is set but email.sender or email.recipients is missing; SMTP is skipped.")
	}
	if out.Email.IMAP.Host != "" && out.Email.IMAP.Username == "" {
		res.addWarn("imap.host is set but imap.username is empty; IMAP is skipped.")
	}
	if (out.Email.SMTP.Username == "") != (out.Email.SMTP.Password == "") {
		res.addWarn("smtp username and password must both be set for SMTP auth; sending unauthenticated.")
	}
	if s := out.Email.SMTP; s.Host != "" && !s.UseTLS && s.Username != "" && s.Password != "" && !isLocalhost(s.Host) {
		res.addWarn("smtp.use_tls is false but credentials are set; PLAIN auth is refused without TLS and SMTP will fail for %s.", s.Host)
	}

	return out, res
}

func isLocalhost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

func dedupe(xs []string) []string {
	seen := map[string]bool{}
	var ys []string
	for _, x := range xs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		key := strings.ToLower(x)
		if seen[key] {
			continue
		}
		seen[key] = true
		ys = append(ys, x)
	}
	return ys
}
