package config

import (
	_ "embed"
	"errors"
	"fmt"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sebuszqo/UnionSignup/internal/signup/domain"
	"gopkg.in/yaml.v3"
	"log"
	"os"
	"time"
)

//go:embed requirements.yaml
var defaultRequirements []byte

var ErrNoRequiredFields = errors.New("requirements file lists no required fields")

type Config struct {
	Port             string        `env:"PORT" envDefault:"8080"`
	SignupURL        string        `env:"SIGNUP_URL,required"`
	LinkTokenURL     string        `env:"LINK_TOKEN_URL"`
	LoginURL         string        `env:"LOGIN_URL"`
	TwoFactorURL     string        `env:"TWO_FACTOR_URL"`
	StripeSecretKey  string        `env:"STRIPE_SECRET_KEY"`
	StripeAPIURL     string        `env:"STRIPE_API_URL"`
	PlaidClientID    string        `env:"PLAID_CLIENT_ID"`
	PlaidSecret      string        `env:"PLAID_SECRET"`
	PlaidEnv         string        `env:"PLAID_ENV" envDefault:"sandbox"`
	RequirementsFile string        `env:"REQUIREMENTS_FILE"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	DBConnection     string        `env:"DB_CONNECTION_STRING"`
	HTTPTimeout      time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	SecureCookies    bool          `env:"SECURE_COOKIES" envDefault:"false"`
	OrganizationName string        `env:"ORGANIZATION_NAME" envDefault:"Union Membership"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("could not parse configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) PlaidConfigured() bool {
	return c.PlaidClientID != "" && c.PlaidSecret != ""
}

type requirementsFile struct {
	Required []string `yaml:"required"`
}

// LoadRequirements reads the required-field list from path, or the embedded
// default when path is empty.
func LoadRequirements(path string) (domain.Requirements, error) {
	raw := defaultRequirements
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read requirements file: %w", err)
		}
		raw = data
	}
	return ParseRequirements(raw)
}

func ParseRequirements(raw []byte) (domain.Requirements, error) {
	var file requirementsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("could not parse requirements: %w", err)
	}
	if len(file.Required) == 0 {
		return nil, ErrNoRequiredFields
	}
	for _, name := range file.Required {
		if !domain.IsFormField(name) {
			return nil, fmt.Errorf("unknown field in requirements: %q", name)
		}
	}
	return domain.NewRequirements(file.Required...), nil
}
