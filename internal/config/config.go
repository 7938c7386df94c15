package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Redis struct {
		Addr    string `yaml:"addr"`
		Channel string `yaml:"channel"`
	} `yaml:"redis"`

	WebSocket struct {
		HandshakeTimeout int `yaml:"handshake_timeout"` // seconds
		SendBufferSize   int `yaml:"send_buffer_size"`
		MaxMessageLength int `yaml:"max_message_length"`
	} `yaml:"websocket"`

	Push struct {
		FCMEndpoint     string `yaml:"fcm_endpoint"`
		FCMServerKey    string `yaml:"fcm_server_key"`
		APNSEndpoint    string `yaml:"apns_endpoint"`
		APNSAuthToken   string `yaml:"apns_auth_token"`
		WebPushEndpoint string `yaml:"webpush_endpoint"`
		TimeoutSeconds  int    `yaml:"timeout_seconds"`
	} `yaml:"push"`

	Workers struct {
		PoolSize         int `yaml:"pool_size"`
		QueueSize        int `yaml:"queue_size"`
		TypingTTLSeconds int `yaml:"typing_ttl_seconds"`
	} `yaml:"workers"`
}

var AppConfig *Config

// GetConfig returns the loaded configuration.
func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

// LoadConfig reads config.yaml, or falls back to environment variables when
// DATABASE_URL is present (test/deployment mode).
func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60
	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Channel = os.Getenv("REDIS_CHANNEL")

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.WebSocket.HandshakeTimeout == 0 {
		cfg.WebSocket.HandshakeTimeout = 10
	}
	if cfg.WebSocket.SendBufferSize == 0 {
		cfg.WebSocket.SendBufferSize = 256
	}
	if cfg.WebSocket.MaxMessageLength == 0 {
		cfg.WebSocket.MaxMessageLength = 4000
	}
	if cfg.Workers.PoolSize == 0 {
		cfg.Workers.PoolSize = 16
	}
	if cfg.Workers.QueueSize == 0 {
		cfg.Workers.QueueSize = 1024
	}
	if cfg.Workers.TypingTTLSeconds == 0 {
		cfg.Workers.TypingTTLSeconds = 15
	}
	if cfg.Push.TimeoutSeconds == 0 {
		cfg.Push.TimeoutSeconds = 5
	}
	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "artlink:events"
	}
}
