package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"jobalert/internal/filter"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultReportFile = "job_report.txt"
	DefaultMailbox    = "INBOX"
	DefaultDotEnv     = ".env"
	DefaultSMTPPort   = 25
	DefaultIMAPPort   = 993

	DefaultRatePerSecond = 2.0
	DefaultBurst         = 4
)

type Config struct {
	Filters   Filters
	Email     EmailConfig
	Providers Providers

	ReportFile string
	Workers    int
	DataDir    string
}

type Filters struct {
	Keywords      string // comma separated, OR'd against titles
	Locations     string // comma separated, OR'd against locations
	ExcludeSenior bool
	MaxYears      int // 0 disables the cap
}

// Providers tunes job board access. Empty URLs mean the public API roots.
type Providers struct {
	GreenhouseURL      string
	LeverURL           string
	SmartRecruitersURL string
	RatePerSecond      float64 // per host
	Burst              int
}

type EmailConfig struct {
	Sender         string
	Recipients     []string
	SendGridAPIKey string
	SMTP           SMTPConfig
	IMAP           IMAPConfig
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
}

type IMAPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Mailbox  string
}

func (c SMTPConfig) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }
func (c IMAPConfig) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// Criteria is the filter configuration of a run.
func (c Config) Criteria() filter.Criteria {
	var maxYears *int
	if c.Filters.MaxYears > 0 {
		n := c.Filters.MaxYears
		maxYears = &n
	}
	return filter.NewCriteria(c.Filters.Keywords, c.Filters.Locations, c.Filters.ExcludeSenior, maxYears)
}

// binding maps a viper key (also the YAML path) to its environment variable.
type binding struct {
	key string
	env string
}

var bindings = []binding{
	{"filters.keywords", "DEFAULT_KEYWORDS"},
	{"filters.locations", "LOCATION_FILTER"},
	{"filters.exclude_senior", "EXCLUDE_SENIOR_TITLES"},
	{"filters.max_years", "MAX_YEARS_EXPERIENCE"},

	{"email.sender", "EMAIL_SENDER"},
	{"email.recipients", "EMAIL_RECIPIENTS"},
	{"email.sendgrid_api_key", "SENDGRID_API_KEY"},

	{"smtp.host", "SMTP_HOST"},
	{"smtp.port", "SMTP_PORT"},
	{"smtp.username", "SMTP_USERNAME"},
	{"smtp.password", "SMTP_PASSWORD"},
	{"smtp.use_tls", "SMTP_USE_TLS"},

	{"imap.host", "IMAP_HOST"},
	{"imap.port", "IMAP_PORT"},
	{"imap.username", "IMAP_USERNAME"},
	{"imap.password", "IMAP_PASSWORD"},
	{"imap.mailbox", "IMAP_MAILBOX"},

	{"providers.greenhouse_url", "JOBALERT_GREENHOUSE_URL"},
	{"providers.lever_url", "JOBALERT_LEVER_URL"},
	{"providers.smartrecruiters_url", "JOBALERT_SMARTRECRUITERS_URL"},
	{"providers.rate_per_second", "JOBALERT_RATE_PER_SECOND"},
	{"providers.burst", "JOBALERT_RATE_BURST"},

	{"report_file", "REPORT_FILE"},
	{"workers", "JOBALERT_WORKERS"},
	{"data_dir", "JOBALERT_DATA_DIR"},
}

type LoadOptions struct {
	File   string         // optional YAML file; missing is an error only when set explicitly
	DotEnv string         // optional .env file; DefaultDotEnv when empty, ignored when absent
	Flags  *pflag.FlagSet // "workers" is bound when present
}

// Load resolves the configuration. Precedence: flags, environment, .env,
// YAML file, defaults.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	v.SetDefault("filters.exclude_senior", "true")
	v.SetDefault("smtp.use_tls", "true")
	v.SetDefault("imap.mailbox", DefaultMailbox)
	v.SetDefault("imap.port", DefaultIMAPPort)
	v.SetDefault("providers.rate_per_second", DefaultRatePerSecond)
	v.SetDefault("providers.burst", DefaultBurst)
	v.SetDefault("report_file", DefaultReportFile)
	v.SetDefault("workers", 4)
	v.SetDefault("data_dir", ".")

	for _, b := range bindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return Config{}, fmt.Errorf("binding %s: %w", b.env, err)
		}
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", opts.File, err)
		}
	}

	dotenv := opts.DotEnv
	if dotenv == "" {
		dotenv = DefaultDotEnv
	}
	if err := mergeDotEnv(v, dotenv); err != nil {
		return Config{}, err
	}

	if opts.Flags != nil {
		if f := opts.Flags.Lookup("workers"); f != nil {
			if err := v.BindPFlag("workers", f); err != nil {
				return Config{}, fmt.Errorf("binding workers flag: %w", err)
			}
		}
	}

	return decode(v)
}

// mergeDotEnv layers KEY=VALUE pairs from path over the YAML values, below
// the real environment.
func mergeDotEnv(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}

	env := viper.New()
	env.SetConfigFile(path)
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	layer := map[string]any{}
	for _, b := range bindings {
		name := strings.ToLower(b.env)
		if !env.IsSet(name) {
			continue
		}
		setPath(layer, b.key, env.GetString(name))
	}
	if len(layer) == 0 {
		return nil
	}
	return v.MergeConfigMap(layer)
}

func setPath(m map[string]any, key string, val any) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = val
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	var err error

	cfg.Filters.Keywords = strings.TrimSpace(v.GetString("filters.keywords"))
	cfg.Filters.Locations = strings.TrimSpace(v.GetString("filters.locations"))
	cfg.Filters.ExcludeSenior = Truthy(v.GetString("filters.exclude_senior"))
	if cfg.Filters.MaxYears, err = intValue(v, "filters.max_years", 0); err != nil {
		return cfg, err
	}

	cfg.Email.Sender = strings.TrimSpace(v.GetString("email.sender"))
	cfg.Email.Recipients = splitList(v.Get("email.recipients"))
	cfg.Email.SendGridAPIKey = strings.TrimSpace(v.GetString("email.sendgrid_api_key"))

	cfg.Email.SMTP.Host = strings.TrimSpace(v.GetString("smtp.host"))
	if cfg.Email.SMTP.Port, err = intValue(v, "smtp.port", DefaultSMTPPort); err != nil {
		return cfg, err
	}
	cfg.Email.SMTP.Username = strings.TrimSpace(v.GetString("smtp.username"))
	cfg.Email.SMTP.Password = v.GetString("smtp.password")
	cfg.Email.SMTP.UseTLS = Truthy(v.GetString("smtp.use_tls"))

	cfg.Email.IMAP.Host = strings.TrimSpace(v.GetString("imap.host"))
	if cfg.Email.IMAP.Port, err = intValue(v, "imap.port", DefaultIMAPPort); err != nil {
		return cfg, err
	}
	cfg.Email.IMAP.Username = strings.TrimSpace(v.GetString("imap.username"))
	cfg.Email.IMAP.Password = v.GetString("imap.password")
	cfg.Email.IMAP.Mailbox = strings.TrimSpace(v.GetString("imap.mailbox"))

	cfg.Providers.GreenhouseURL = strings.TrimSpace(v.GetString("providers.greenhouse_url"))
	cfg.Providers.LeverURL = strings.TrimSpace(v.GetString("providers.lever_url"))
	cfg.Providers.SmartRecruitersURL = strings.TrimSpace(v.GetString("providers.smartrecruiters_url"))
	if cfg.Providers.RatePerSecond, err = floatValue(v, "providers.rate_per_second", DefaultRatePerSecond); err != nil {
		return cfg, err
	}
	if cfg.Providers.Burst, err = intValue(v, "providers.burst", DefaultBurst); err != nil {
		return cfg, err
	}

	cfg.ReportFile = strings.TrimSpace(v.GetString("report_file"))
	if cfg.Workers, err = intValue(v, "workers", 4); err != nil {
		return cfg, err
	}
	cfg.DataDir = strings.TrimSpace(v.GetString("data_dir"))

	return cfg, nil
}

// intValue reads key as an integer. Empty means def; "0" stays 0.
func intValue(v *viper.Viper, key string, def int) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, raw)
	}
	return n, nil
}

func floatValue(v *viper.Viper, key string, def float64) (float64, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, raw)
	}
	return f, nil
}

// splitList accepts a YAML sequence or a comma separated string.
func splitList(raw any) []string {
	var items []string
	switch t := raw.(type) {
	case nil:
		return nil
	case []any:
		for _, x := range t {
			items = append(items, fmt.Sprint(x))
		}
	case []string:
		items = t
	default:
		items = strings.Split(fmt.Sprint(t), ",")
	}

	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Truthy reports whether s is one of 1, true, yes, on (any case).
func Truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
