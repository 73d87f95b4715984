package config

import (
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	Pg            Pg            `yaml:"pg" validate:"required"`
	Redis         Redis         `yaml:"redis"`
	HttpPort      int           `yaml:"http_port" validate:"required"`
	JwtTTL        time.Duration `yaml:"jwt_ttl" validate:"required"`
	PostsPerPage  int           `yaml:"posts_per_page" validate:"required"` // default page size for listings and comment pages
	LogLevel      string        `yaml:"log_level"`
	LogJSON       bool          `yaml:"log_json"`
	CorsOrigins   []string      `yaml:"cors_origins"`
	SecureCookies bool          `yaml:"secure_cookies"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Dbname   string `yaml:"dbname" validate:"required"`
	Password string `yaml:"password"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Db       int    `yaml:"db"`
	Password string `yaml:"password"`
}

type Private struct {
	JwtKey     string `yaml:"jwt_key" validate:"required"`
	PgPassword string `yaml:"pg_password"`
	RedisPass  string `yaml:"redis_password"`
}

func (s *Config) JwtKey() string {
	return s.private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Public.JwtTTL
}

// PgPassword prefers the private value so the public file can stay secret-free.
func (s *Config) PgPassword() string {
	if s.private.PgPassword != "" {
		return s.private.PgPassword
	}
	return s.Public.Pg.Password
}

func (s *Config) RedisPassword() string {
	if s.private.RedisPass != "" {
		return s.private.RedisPass
	}
	return s.Public.Redis.Password
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(output); err != nil {
		panic("config is missing required fields: " + err.Error())
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	return &Config{public, private}
}
