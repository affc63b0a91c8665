package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type StreamOpts struct {
	Width          int    `env:"STREAM_WIDTH" envDefault:"1280"`
	Height         int    `env:"STREAM_HEIGHT" envDefault:"720"`
	FPS            int    `env:"STREAM_FPS" envDefault:"30"`
	BitrateKbps    int    `env:"STREAM_BITRATE_KBPS" envDefault:"2000"`
	MaxBitrateKbps int    `env:"STREAM_MAX_BITRATE_KBPS" envDefault:"2500"`
	HardwareAccel  bool   `env:"STREAM_HARDWARE_ACCELERATION" envDefault:"false"`
	VideoCodec     string `env:"STREAM_CODEC" envDefault:"H264"`
}

// DBPool: límites del pool Postgres.
type DBPool struct {
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
}

type Config struct {
	DiscordToken    string   `env:"DISCORD_TOKEN,required,notEmpty"`
	AcceptedAuthors []string `env:"ACCEPTED_AUTHORS,required,notEmpty" envSeparator:","`
	Prefix          string   `env:"COMMAND_PREFIX" envDefault:"$"`

	// Backend: DATABASE_URL (Postgres) > MONGO_URI > memoria
	DatabaseURL   string `env:"DATABASE_URL"`
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"streambot"`
	DB            DBPool

	AutoVocInterval time.Duration `env:"AUTOVOC_INTERVAL" envDefault:"10m"`
	GSSendTimeout   time.Duration `env:"GS_SEND_TIMEOUT" envDefault:"15s"`

	HTTPAddr     string `env:"HTTP_ADDR" envDefault:":8080"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogDev   bool   `env:"LOG_DEV" envDefault:"false"`

	Stream StreamOpts
}

// Load lee el entorno (cargar .env antes con godotenv).
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.AutoVocInterval <= 0 {
		return Config{}, fmt.Errorf("config: AUTOVOC_INTERVAL debe ser > 0")
	}
	return cfg, nil
}

// Owner es quien recibe las alertas por DM.
func (c Config) Owner() string {
	if len(c.AcceptedAuthors) == 0 {
		return ""
	}
	return c.AcceptedAuthors[0]
}

func (c Config) Backend() string {
	switch {
	case c.DatabaseURL != "":
		return "postgres"
	case c.MongoURI != "":
		return "mongo"
	default:
		return "memory"
	}
}

func (c Config) IsAccepted(userID string) bool {
	for _, id := range c.AcceptedAuthors {
		if id == userID {
			return true
		}
	}
	return false
}

type storageEnv struct {
	DatabaseURL   string `env:"DATABASE_URL"`
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"streambot"`
	DB            DBPool
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadStorage lee solo lo necesario para abrir el store (botctl no necesita token).
func LoadStorage() (Config, error) {
	se, err := env.ParseAs[storageEnv]()
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Config{
		DatabaseURL:   se.DatabaseURL,
		MongoURI:      se.MongoURI,
		MongoDatabase: se.MongoDatabase,
		DB:            se.DB,
		LogLevel:      se.LogLevel,
	}, nil
}
