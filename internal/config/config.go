package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config определяет структуру конфигурации всего приложения целиком
type Config struct {
	API      `yaml:"api"`
	Storage  `yaml:"storage"`
	Postgres `yaml:"postgres"`
	Kafka    `yaml:"kafka"`
	Logger   `yaml:"logger"`
}

// API содержит конфигурацию клиента сервера витрины
type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// defaultAPITimeout применяется, если timeout в конфиге не задан
const defaultAPITimeout = 10 * time.Second

// UnmarshalYAML разбирает секцию api вручную:
// yaml.v3 не умеет читать time.Duration из строк вида "10s"
func (a *API) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	a.BaseURL = raw.BaseURL
	if raw.Timeout == "" {
		a.Timeout = defaultAPITimeout
		return nil
	}
	timeout, err := time.ParseDuration(raw.Timeout)
	if err != nil {
		return err
	}
	a.Timeout = timeout
	return nil
}

// Storage выбирает драйвер хранилища корзины
// file — JSON-файлы в каталоге Path, postgres — общая корзина в БД (киоск-режим)
type Storage struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// Postgres содержит конфигурацию для подключения к базе данных
// используется только при storage.driver: postgres
type Postgres struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	DBName   string `yaml:"db_name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// Kafka содержит конфигурацию релея событий в аналитику
type Kafka struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Logger содержит конфигурацию для логгера
type Logger struct {
	Level string `yaml:"level"`
}

// MustLoad загружает конфигурацию из файла по указанному пути
// в случае ошибки программа завершается с фатальной ошибкой
func MustLoad(configPath string) *Config {
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config

	file, err := os.ReadFile(configPath)
	if err != nil {
		log.Fatalf("failed to read config file: %s", err)
	}

	if err := yaml.Unmarshal(file, &cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %s", err)
	}

	return &cfg
}
