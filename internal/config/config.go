package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"TTT_LOG_LEVEL" env-default:"info"`
	HTTPAddr  string    `yaml:"http-addr" env:"TTT_HTTP_ADDR" env-default:":8080"`
	Game      Game      `yaml:"game"`
	Redis     Redis     `yaml:"redis"`
	Telemetry Telemetry `yaml:"telemetry"`
}

// Game holds the defaults a new game starts with.
type Game struct {
	VsComputer    bool          `yaml:"vs-computer" env:"TTT_VS_COMPUTER" env-default:"true"`
	Difficulty    string        `yaml:"difficulty" env:"TTT_DIFFICULTY" env-default:"impossible"`
	MoveTimeout   time.Duration `yaml:"move-timeout" env:"TTT_MOVE_TIMEOUT" env-default:"10s"`
	ComputerDelay time.Duration `yaml:"computer-delay" env:"TTT_COMPUTER_DELAY" env-default:"300ms"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env:"TTT_REDIS_ENABLED" env-default:"false"`
	Host    string `yaml:"host" env:"TTT_REDIS_HOST" env-default:"localhost"`
	Port    string `yaml:"port" env:"TTT_REDIS_PORT" env-default:"6379"`
	Channel string `yaml:"channel" env:"TTT_REDIS_CHANNEL" env-default:"channel:events"`
}

type Telemetry struct {
	Enabled      bool   `yaml:"enabled" env:"TTT_OTEL_ENABLED" env-default:"false"`
	Endpoint     string `yaml:"endpoint" env:"TTT_OTEL_ENDPOINT" env-default:"otel-collector:4317"`
	ServiceName  string `yaml:"service-name" env:"TTT_OTEL_SERVICE_NAME" env-default:"tic-tac-toe"`
	StdoutTraces bool   `yaml:"stdout-traces" env:"TTT_OTEL_STDOUT_TRACES" env-default:"false"`
}

// Load reads the YAML file at path, or only the environment when path is empty.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	config := &Config{}

	if path == "" {
		if err := cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read config from environment: %w", err)
		}
		return config, nil
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}
	return config, nil
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}
	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
