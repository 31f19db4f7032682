package paymentgateway

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Well-known credential keys. Adapters may read any other key as a
// provider-specific passthrough field.
const (
	CredAPIKey        = "apiKey"
	CredSecretKey     = "secretKey"
	CredMerchantID    = "merchantId"
	CredWebhookSecret = "webhookSecret"
	CredWebhookID     = "webhookId"
	CredBaseURL       = "baseUrl"
)

// Credentials is the flat, normalized credential bag for one provider.
type Credentials map[string]string

func (c Credentials) Get(key string) string {
	return c[key]
}

// Missing lists the keys that are absent or blank.
func (c Credentials) Missing(keys ...string) []string {
	var out []string
	for _, k := range keys {
		if strings.TrimSpace(c[k]) == "" {
			out = append(out, k)
		}
	}
	return out
}

// EnvSource resolves environment variable indirection in stored credentials.
type EnvSource interface {
	LookupEnv(key string) (string, bool)
}

type dotenvSource struct {
	values map[string]string
}

// NewEnvSource reads the given .env files (missing files are ignored) and
// falls back to the process environment.
func NewEnvSource(files ...string) EnvSource {
	values := make(map[string]string)
	for _, f := range files {
		m, err := godotenv.Read(f)
		if err != nil {
			continue
		}
		for k, v := range m {
			if _, exists := values[k]; !exists {
				values[k] = v
			}
		}
	}
	return &dotenvSource{values: values}
}

func (s *dotenvSource) LookupEnv(key string) (string, bool) {
	if v, ok := s.values[key]; ok {
		return v, true
	}
	return os.LookupEnv(key)
}

// MapEnv is an EnvSource over a fixed map.
type MapEnv map[string]string

func (m MapEnv) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

var (
	bracedVar = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)\}$`)
	bareVar   = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
)

var keyAliases = map[string]string{
	"api_key":        CredAPIKey,
	"secret_key":     CredSecretKey,
	"merchant_id":    CredMerchantID,
	"webhook_secret": CredWebhookSecret,
	"webhook_id":     CredWebhookID,
	"base_url":       CredBaseURL,
}

// NormalizeCredentials flattens a stored credential object into strings:
//
//	${NAME}  -> env NAME if set, otherwise kept verbatim
//	env:NAME -> env NAME, or "" when unset
//	NAME     -> env NAME when the bare all-caps token names a set variable
//
// Values are trimmed, snake_case aliases of the well-known keys fold to
// their camelCase form and unknown keys pass through. Unresolved variables
// are not an error; callers check sufficiency with Credentials.Missing.
func NormalizeCredentials(raw map[string]any, env EnvSource) Credentials {
	out := make(Credentials, len(raw))
	for k, v := range raw {
		key := strings.TrimSpace(k)
		if alias, ok := keyAliases[key]; ok {
			if _, explicit := raw[alias]; explicit {
				continue
			}
			key = alias
		}
		out[key] = resolveValue(stringify(v), env)
	}
	return out
}

func resolveValue(v string, env EnvSource) string {
	v = strings.TrimSpace(v)
	if env == nil || v == "" {
		return v
	}

	if m := bracedVar.FindStringSubmatch(v); m != nil {
		if resolved, ok := env.LookupEnv(m[1]); ok {
			return strings.TrimSpace(resolved)
		}
		return v
	}

	if name, ok := strings.CutPrefix(v, "env:"); ok {
		resolved, _ := env.LookupEnv(strings.TrimSpace(name))
		return strings.TrimSpace(resolved)
	}

	if bareVar.MatchString(v) {
		if resolved, ok := env.LookupEnv(v); ok {
			return strings.TrimSpace(resolved)
		}
	}
	return v
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; merchant ids must not turn into 1.234567e+06
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case bool, int, int64, int32, uint, uint64, json.Number:
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
