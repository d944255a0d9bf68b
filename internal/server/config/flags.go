package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/hisabkitab/internal/flagx"
)

var knownFlags = []string{
	"-a", "-prefix", "-d", "-s", "-t", "-o", "-cookie-secure", "-cors",
	"-mail-host", "-mail-port", "-mail-user", "-mail-password", "-mail-from",
	"-u", "-p", "-b", "-g", "-e", "-max-upload",
}

// parseFlags overlays Config fields from command-line flags.
//
//	-a string          HTTP bind address (e.g. ":5000")
//	-prefix string     API path prefix
//	-d string          PostgreSQL DSN
//	-s string          session signing key
//	-t int             session validity, minutes (0 = no expiry)
//	-o int             OTP validity, minutes
//	-cookie-secure     Secure + SameSite=None session cookie
//	-cors string       allowed browser origins, comma-separated
//	-mail-host string  SMTP host
//	-mail-port int     SMTP port
//	-mail-user string  SMTP user, also the sender address
//	-mail-password     SMTP password
//	-mail-from string  sender display name
//	-u / -p string     S3 user / password
//	-b / -g / -e       S3 bucket / region / base endpoint
//	-max-upload int    profile image size limit, bytes
//
// Only the flags above are picked out of os.Args, so other components may
// define their own.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags, "-cookie-secure")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.APIPrefix, "prefix", config.APIPrefix, "API path prefix")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidity := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session validity (in minutes, 0 = unlimited)")
	otpValidity := fs.Int("o", int(config.OTPValidityDuration.Minutes()), "otp validity (in minutes)")

	fs.BoolVar(&config.CookieSecure, "cookie-secure", config.CookieSecure, "secure session cookie")
	cors := fs.String("cors", strings.Join(config.CORSOrigins, ","), "allowed CORS origins (comma-separated)")

	fs.StringVar(&config.MailHost, "mail-host", config.MailHost, "SMTP host")
	fs.IntVar(&config.MailPort, "mail-port", config.MailPort, "SMTP port")
	fs.StringVar(&config.MailUser, "mail-user", config.MailUser, "SMTP user")
	fs.StringVar(&config.MailPassword, "mail-password", config.MailPassword, "SMTP password")
	fs.StringVar(&config.MailFromName, "mail-from", config.MailFromName, "sender display name")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.Int64Var(&config.MaxUploadSize, "max-upload", config.MaxUploadSize, "max profile image size (bytes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Minute
	config.OTPValidityDuration = time.Duration(*otpValidity) * time.Minute
	config.CORSOrigins = splitList(*cors)
}
