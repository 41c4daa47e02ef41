package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// App holds every runtime setting. Values come from the environment, with a
// .env file loaded first if one exists.
type App struct {
	Port string `envconfig:"PORT" default:"8080"`

	// Upstream listing API
	APIBase      string `envconfig:"EB_API_BASE" default:"https://www.eventbriteapi.com"`
	APIVersion   string `envconfig:"EB_API_VERSION" default:"v3"`
	Token        string `envconfig:"EB_TOKEN"`
	Organization string `envconfig:"EB_ORGANIZATION"`
	FetchTimeout int    `envconfig:"EB_FETCH_TIMEOUT_SEC" default:"60"`

	// Checkout widget
	AffiliateCode string `envconfig:"EB_AFFILIATE_CODE"`

	// Page cache
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	CacheTTL  int    `envconfig:"FEED_CACHE_TTL_SEC" default:"300"`

	// Live refresh
	RefreshInterval int `envconfig:"FEED_REFRESH_SEC" default:"120"`

	JWTSecret string `envconfig:"JWT_SECRET" default:"change_me"`
}

func Load() (App, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}
	var c App
	err := envconfig.Process("", &c)
	return c, err
}

func (c App) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

func (c App) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

func (c App) RefreshIntervalDuration() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}
