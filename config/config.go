package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// Параметры жеребьёвки и дебатного таймера.
	PrepDurationSec   int
	SpeechDurationSec int
	JudgesPerRoom     int

	// Cloudflare R2 для выгрузки табов.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		// Можно установить значение по умолчанию (НЕБЕЗОПАСНО для JWT!) или вернуть ошибку
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	prepDuration, err := intEnv("PREP_DURATION_SEC", 900)
	if err != nil {
		return nil, err
	}
	speechDuration, err := intEnv("SPEECH_DURATION_SEC", 420)
	if err != nil {
		return nil, err
	}
	judgesPerRoom, err := intEnv("JUDGES_PER_ROOM", 1)
	if err != nil {
		return nil, err
	}
	if judgesPerRoom < 1 {
		return nil, fmt.Errorf("JUDGES_PER_ROOM must be at least 1, got %d", judgesPerRoom)
	}

	cfg := &Config{
		DatabaseURL:       dbURL,
		JWTSecretKey:      jwtKey,
		ServerPort:        port,
		PrepDurationSec:   prepDuration,
		SpeechDurationSec: speechDuration,
		JudgesPerRoom:     judgesPerRoom,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

// R2Configured сообщает, заданы ли все обязательные параметры R2,
// включая публичный базовый URL, без которого загрузчик не создаётся.
// Без них сервис экспорта не поднимается, остальное приложение работает.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" &&
		c.R2SecretAccessKey != "" && c.R2BucketName != "" &&
		c.R2PublicBaseURL != ""
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return v, nil
}
