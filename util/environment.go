package util

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var environmentLogger = log.With().Str("logger_name", "util::environment").Logger()

type hudEnvironment struct {
	PostgresHost   string
	PostgresPort   string
	PostgresDB     string
	PostgresUser   string
	PostgresPW     string
	PostgresSSL    string
	RedisHost      string
	RedisPort      string
	RedisPW        string
	RedisDB        string
	NatsURL        string
	TessdataPrefix string
	RestPort       string
	LogLevel       string
}

// Env is a helper object for accessing environment variables.
var Env = &hudEnvironment{
	PostgresHost:   "POSTGRES_HOST",
	PostgresPort:   "POSTGRES_PORT",
	PostgresDB:     "POSTGRES_DB",
	PostgresUser:   "POSTGRES_USER",
	PostgresPW:     "POSTGRES_PASSWORD",
	PostgresSSL:    "POSTGRES_SSL_MODE",
	RedisHost:      "REDIS_HOST",
	RedisPort:      "REDIS_PORT",
	RedisPW:        "REDIS_PW",
	RedisDB:        "REDIS_DB",
	NatsURL:        "NATS_URL",
	TessdataPrefix: "TESSDATA_PREFIX",
	RestPort:       "REST_PORT",
	LogLevel:       "LOG_LEVEL",
}

func (h *hudEnvironment) getOrPanic(key string) string {
	v := os.Getenv(key)
	if v == "" {
		msg := fmt.Sprintf("%s is not defined", key)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return v
}

func (h *hudEnvironment) getOrDefault(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func (h *hudEnvironment) GetPostgresHost() string {
	return h.getOrPanic(h.PostgresHost)
}

func (h *hudEnvironment) GetPostgresPort() int {
	port := h.getOrDefault(h.PostgresPort, "5432")
	portNum, err := strconv.Atoi(port)
	if err != nil {
		msg := fmt.Sprintf("Invalid %s value [%s]", h.PostgresPort, port)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return portNum
}

func (h *hudEnvironment) GetPostgresDB() string {
	return h.getOrPanic(h.PostgresDB)
}

func (h *hudEnvironment) GetPostgresUser() string {
	return h.getOrPanic(h.PostgresUser)
}

func (h *hudEnvironment) GetPostgresPW() string {
	return h.getOrPanic(h.PostgresPW)
}

func (h *hudEnvironment) GetPostgresSSLMode() string {
	return h.getOrDefault(h.PostgresSSL, "disable")
}

func (h *hudEnvironment) GetPostgresConnStr() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		h.GetPostgresHost(),
		h.GetPostgresPort(),
		h.GetPostgresUser(),
		h.GetPostgresPW(),
		h.GetPostgresDB(),
		h.GetPostgresSSLMode())
}

func (h *hudEnvironment) GetRedisAddr() string {
	host := h.getOrDefault(h.RedisHost, "localhost")
	port := h.getOrDefault(h.RedisPort, "6379")
	return fmt.Sprintf("%s:%s", host, port)
}

func (h *hudEnvironment) GetRedisPW() string {
	return h.getOrDefault(h.RedisPW, "")
}

func (h *hudEnvironment) GetRedisDB() int {
	db := h.getOrDefault(h.RedisDB, "0")
	dbNum, err := strconv.Atoi(db)
	if err != nil {
		msg := fmt.Sprintf("Invalid %s value [%s]", h.RedisDB, db)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return dbNum
}

// GetNatsURL returns the NATS server url. An empty value disables
// event publishing.
func (h *hudEnvironment) GetNatsURL() string {
	return h.getOrDefault(h.NatsURL, "")
}

func (h *hudEnvironment) GetTessdataPrefix() string {
	return h.getOrDefault(h.TessdataPrefix, "")
}

func (h *hudEnvironment) GetRestPort() int {
	port := h.getOrDefault(h.RestPort, "8080")
	portNum, err := strconv.Atoi(port)
	if err != nil {
		msg := fmt.Sprintf("Invalid %s value [%s]", h.RestPort, port)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return portNum
}

func (h *hudEnvironment) GetZeroLogLogLevel() zerolog.Level {
	l := h.getOrDefault(h.LogLevel, "info")
	switch l {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		environmentLogger.Warn().Msgf("Unknown log level [%s]. Defaulting to info", l)
		return zerolog.InfoLevel
	}
}
