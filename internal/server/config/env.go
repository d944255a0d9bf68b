package config

import (
	"os"
	"strconv"
	"strings"
)

// parseEnv overlays the secrets and endpoints usually injected by the
// deployment environment. Unset variables are ignored; a MAIL_PORT that is
// not a number panics like any other malformed setting.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("JWT_SECRET"); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("MAIL_HOST"); ok {
		config.MailHost = v
	}
	if v, ok := os.LookupEnv("MAIL_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.MailPort = port
	}
	if v, ok := os.LookupEnv("MAIL_USER"); ok {
		config.MailUser = v
	}
	if v, ok := os.LookupEnv("MAIL_PASS"); ok {
		config.MailPassword = v
	}
	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		config.CORSOrigins = splitList(v)
	}
}

// splitList reads a comma-separated list, dropping blanks.
func splitList(v string) []string {
	out := []string{}
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
