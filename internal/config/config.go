// Package config предоставляет структуры и функцию для парсинга и загрузки
// конфига приложения.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env                string          `yaml:"env" env:"SUBTRACK_ENV" env-default:"local"`
	DataDir            string          `yaml:"data_dir" env:"SUBTRACK_DATA_DIR"`
	ReminderWindowDays int             `yaml:"reminder_window_days" env:"SUBTRACK_REMINDER_WINDOW_DAYS" env-default:"3"`
	RedisConnection    RedisConnection `yaml:"redis_connection"`
	SMTP               SMTP            `yaml:"smtp"`
	Advisor            Advisor         `yaml:"advisor"`
	Session            Session         `yaml:"session"`
}

// RedisConnection структура для настройки подключения к redis-кешу.
// Пустой адрес означает работу без кеша.
type RedisConnection struct {
	Addr        string        `yaml:"addr" env:"SUBTRACK_REDIS_ADDR"`
	Password    string        `yaml:"password" env:"SUBTRACK_REDIS_PASSWORD"`
	User        string        `yaml:"user" env:"SUBTRACK_REDIS_USER"`
	DB          int           `yaml:"db" env:"SUBTRACK_REDIS_DB" env-default:"0"`
	MaxRetries  int           `yaml:"max_retries" env-default:"3"`
	DialTimeout time.Duration `yaml:"dial_timeout" env-default:"5s"`
	Timeout     time.Duration `yaml:"timeout" env-default:"3s"`
	CacheTTL    time.Duration `yaml:"cache_ttl" env-default:"1h"`
}

// SMTP структура для отправки напоминаний по почте.
// Пустой хост означает, что почтовые напоминания выключены.
type SMTP struct {
	Host     string `yaml:"host" env:"SUBTRACK_SMTP_HOST"`
	Port     string `yaml:"port" env:"SUBTRACK_SMTP_PORT" env-default:"587"`
	User     string `yaml:"user" env:"SUBTRACK_SMTP_USER"`
	Password string `yaml:"password" env:"SUBTRACK_SMTP_PASSWORD"`
}

// Advisor структура для настройки AI-советника.
// Ключ API берётся из окружения (GEMINI_API_KEY), в конфиге не хранится.
type Advisor struct {
	Model             string        `yaml:"model" env:"SUBTRACK_ADVISOR_MODEL" env-default:"gemini-2.5-flash"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env-default:"10"`
	Timeout           time.Duration `yaml:"timeout" env-default:"60s"`
}

// Session структура для работы с токеном локальной сессии.
type Session struct {
	SecretKey string        `yaml:"secret_key" env:"SUBTRACK_SESSION_SECRET" env-default:"subtrack-local-secret"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"SUBTRACK_SESSION_TTL" env-default:"720h"`
}

// MustLoad загружает конфиг из файла, указанного в SUBTRACK_CONFIG, либо
// из переменных окружения и значений по умолчанию, если переменная не
// задана. Завершает процесс при некорректном конфиге.
func MustLoad() *Config {
	var cfg Config

	configPath := os.Getenv("SUBTRACK_CONFIG")
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			log.Fatalf("config file %s does not exist", configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			log.Fatalf("cannot read config: %s", err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from environment: %s", err)
		}
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("cannot resolve home directory: %s", err)
		}
		cfg.DataDir = filepath.Join(home, ".subtrack")
	}

	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"DataDir: %s\n"+
			"ReminderWindowDays: %d\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"  CacheTTL: %s\n"+
			"SMTP:\n"+
			"  Host: %s\n"+
			"  Port: %s\n"+
			"Advisor:\n"+
			"  Model: %s\n"+
			"  RequestsPerMinute: %d\n"+
			"Session:\n"+
			"  TokenTTL: %s\n",
		c.Env,
		c.DataDir,
		c.ReminderWindowDays,
		c.RedisConnection.Addr,
		c.RedisConnection.DB,
		c.RedisConnection.CacheTTL,
		c.SMTP.Host,
		c.SMTP.Port,
		c.Advisor.Model,
		c.Advisor.RequestsPerMinute,
		c.Session.TokenTTL,
	)
}
