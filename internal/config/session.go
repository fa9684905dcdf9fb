package config

import "time"

type Session struct {
	CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"sessionid"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"336h"`
	Secure     bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
}
