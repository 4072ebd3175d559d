package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config is the SDK's deployment-supplied configuration.
type Config struct {
	// APIBaseURL is the backend root every endpoint path is appended to.
	APIBaseURL string `env:"CASPOOL_API_URL" envDefault:"http://localhost:3001/api"`
	// HTTPTimeout bounds each backend request.
	HTTPTimeout time.Duration `env:"CASPOOL_HTTP_TIMEOUT" envDefault:"10s"`
	// WalletInstallURL is where users without the wallet extension are
	// redirected.
	WalletInstallURL string `env:"CASPOOL_WALLET_INSTALL_URL" envDefault:"https://www.casperwallet.io/"`
}

// Load reads configuration from the environment, first merging a local
// .env file when one exists.
func Load() (Config, error) {
	// missing .env is fine; explicit env vars still apply
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse environment")
	}
	return cfg, nil
}
