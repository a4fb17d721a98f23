package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server        Server   `mapstructure:"server"`
	Postgres      Postgres `mapstructure:"postgres"`
	Broker        Broker   `mapstructure:"broker"`
	Reminder      Reminder `mapstructure:"reminder"`
	Seed          Seed     `mapstructure:"seed"`
	LoggingLevel  string   `mapstructure:"logging-level"`
	LoggingFormat string   `mapstructure:"logging-format"`
}

type Server struct {
	Port          string `mapstructure:"port"`
	SwaggerHost   string `mapstructure:"swagger_host"`
	SwaggerSchema string `mapstructure:"swagger_schema"`
	BodyLimit     int    `mapstructure:"body_limit"`
}

type Postgres struct {
	ConnString     string `mapstructure:"conn_string"`
	MaxConnections int32  `mapstructure:"max_connections"`
}

type Broker struct {
	Kafka Kafka `mapstructure:"kafka"`
}

type Kafka struct {
	Enabled     bool   `mapstructure:"enabled"`
	Brokers     string `mapstructure:"brokers"`
	Topic       string `mapstructure:"topic"`
	Group       string `mapstructure:"group"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	MaxAttempts int    `mapstructure:"maxAttempts"`
}

// Reminder задает расписание рассылки напоминаний.
// Приоритет: если указан Schedule, используется он, иначе Interval.
type Reminder struct {
	Schedule   string `mapstructure:"schedule"`     // cron-выражение, например "0 */5 * * * *"
	Interval   string `mapstructure:"interval"`     // интервал, например "@every 1m"
	RunOnStart bool   `mapstructure:"run_on_start"` // первый цикл сразу после старта
}

type Seed struct {
	Enabled bool `mapstructure:"enabled"`
}

var ErrNoConnString = errors.New("postgres.conn_string is required")

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.swagger_host", "localhost:8080")
	v.SetDefault("server.swagger_schema", "http")
	v.SetDefault("server.body_limit", 4*1024*1024)

	v.SetDefault("postgres.conn_string", "")
	v.SetDefault("postgres.max_connections", 5)

	v.SetDefault("broker.kafka.enabled", false)
	v.SetDefault("broker.kafka.brokers", "localhost:9092")
	v.SetDefault("broker.kafka.topic", "calendar-notifications")
	v.SetDefault("broker.kafka.group", "calendar-hub")
	v.SetDefault("broker.kafka.user", "")
	v.SetDefault("broker.kafka.password", "")
	v.SetDefault("broker.kafka.maxAttempts", 3)

	v.SetDefault("reminder.schedule", "")
	v.SetDefault("reminder.interval", "@every 1m")
	v.SetDefault("reminder.run_on_start", true)

	v.SetDefault("seed.enabled", false)

	v.SetDefault("logging-level", "info")
	v.SetDefault("logging-format", "json")
}

func NewConfig() (Config, error) {
	return load(viper.New(), ".")
}

func load(v *viper.Viper, path string) (Config, error) {
	setDefaults(v)

	replacer := strings.NewReplacer(".", "_", "-", "_")

	v.AutomaticEnv()
	// Настраиваем замену точек и дефисов на подчеркивания для переменных окружения
	v.SetEnvKeyReplacer(replacer)
	// Строка подключения в стиле ConnectionStrings:DefaultConnection тоже принимается
	_ = v.BindEnv("postgres.conn_string", "POSTGRES_CONN_STRING", "CONNECTIONSTRINGS_DEFAULTCONNECTION")

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(path)

	var conf Config
	if err := v.ReadInConfig(); err != nil {
		// Файла может не быть - тогда работаем только на переменных окружения
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return conf, err
		}
	} else {
		applyEnvFile(v, replacer)
	}

	if err := v.Unmarshal(&conf); err != nil {
		return conf, err
	}

	if conf.Postgres.ConnString == "" {
		return conf, ErrNoConnString
	}

	return conf, nil
}

// applyEnvFile переносит плоские ключи из .env (POSTGRES_CONN_STRING) на вложенные
// ключи конфига (postgres.conn_string). Переменные окружения процесса важнее файла.
func applyEnvFile(v *viper.Viper, replacer *strings.Replacer) {
	for _, key := range v.AllKeys() {
		flat := replacer.Replace(key)
		if flat == key || !v.InConfig(flat) {
			continue
		}
		if _, ok := os.LookupEnv(strings.ToUpper(flat)); ok {
			continue
		}
		v.Set(key, v.Get(flat))
	}
}
