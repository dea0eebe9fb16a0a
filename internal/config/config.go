package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string `yaml:"env" env-default:"local"`
	FrontendURL string `yaml:"frontend_url" env-required:"true"`
	Tokens      `yaml:"tokens"`
	Postgres    `yaml:"postgres"`
	SMTP        `yaml:"smtp"`
	NewsAPI     `yaml:"newsapi"`
	Gemini      `yaml:"gemini"`
	HTTPServer  `yaml:"http_server"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Postgres struct {
	Host     string `yaml:"host" env-default:"postgres"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"password" env-required:"true"`
	DBName   string `yaml:"dbname" env-required:"true"`
	SSLMode  string `yaml:"sslmode" env-default:"disabled"`
}

type Tokens struct {
	SessionTokenTTL    time.Duration `yaml:"session_token_ttl" env-default:"1h"`
	SessionTokenSecret string        `yaml:"session_token_secret" env-required:"true"`
	ResetTokenTTL      time.Duration `yaml:"reset_token_ttl" env-default:"10m"`
}

type SMTP struct {
	Host     string `yaml:"host" env-required:"true"`
	Port     int    `yaml:"port" env-default:"587"`
	Username string `yaml:"username" env-required:"true"`
	Password string `yaml:"password" env-required:"true"`
	From     string `yaml:"from"`
}

type NewsAPI struct {
	BaseURL string        `yaml:"base_url" env-default:"https://newsapi.org/v2"`
	APIKey  string        `yaml:"api_key" env-required:"true"`
	Timeout time.Duration `yaml:"timeout" env-default:"10s"`
}

type Gemini struct {
	APIKey  string        `yaml:"api_key" env-required:"true"`
	Model   string        `yaml:"model" env-default:"gemini-2.0-flash"`
	Timeout time.Duration `yaml:"timeout" env-default:"30s"`
}

func MustLoad(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("Config file does not exist" + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("Failed to read config" + err.Error())
	}

	return &cfg
}
