package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// 環境変数のプレフィックス（ORDERBOT_DATABASE__DSN のように __ で入れ子）
const EnvPrefix = "ORDERBOT_"

// Configはアプリ全体の設定
type Config struct {
	App struct {
		Name     string `koanf:"name" validate:"required"`
		HTTPAddr string `koanf:"http_addr" validate:"required"`
		LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	Database struct {
		Driver     string `koanf:"driver" validate:"oneof=sqlite postgres"`
		DSN        string `koanf:"dsn" validate:"required_if=Driver postgres"`
		SQLitePath string `koanf:"sqlite_path" validate:"required_if=Driver sqlite"`
	} `koanf:"database"`

	// Addr が空なら下書きはプロセス内メモリに置く
	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
		DB       int    `koanf:"db" validate:"gte=0"`
	} `koanf:"redis"`

	Draft struct {
		TTL time.Duration `koanf:"ttl" validate:"gt=0"`
	} `koanf:"draft"`

	// URL が空なら送信メッセージはログに出すだけ
	Rabbit struct {
		URL        string `koanf:"url"`
		Exchange   string `koanf:"exchange" validate:"required_with=URL"`
		RoutingKey string `koanf:"routing_key" validate:"required_with=URL"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers []string `koanf:"brokers"`
		Topic   string   `koanf:"topic" validate:"required_with=Brokers"`
	} `koanf:"kafka"`

	Gateway struct {
		JWTSecret string `koanf:"jwt_secret" validate:"required,min=16"`
	} `koanf:"gateway"`

	// 管理者のチャットID（カンマ区切り）
	AdminIDsRaw string  `koanf:"admin_ids"`
	AdminIDs    []int64 `koanf:"-"`
}

var defaults = map[string]interface{}{
	"app.name":             "orderbot",
	"app.http_addr":        ":8080",
	"app.log_level":        "info",
	"app.log_file":         "./logs/orderbot.log",
	"database.driver":      "sqlite",
	"database.sqlite_path": "orders.db",
	"draft.ttl":            "30m",
	"rabbitmq.exchange":    "bot.outbound",
	"rabbitmq.routing_key": "message.send",
	"kafka.topic":          "orderbot.orders",
}

// Load は .env → デフォルト → YAML（任意）→ 環境変数 の順に重ねる。
// yamlPath が空、またはファイルが無い場合は YAML を読まない。
func Load(yamlPath string) (Config, error) {
	// .env は無くてもよい
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if yamlPath != "" {
		if _, err := os.Stat(yamlPath); err == nil {
			if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("load %s: %w", yamlPath, err)
			}
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}

	// 旧来の ADMIN_IDS も受け付ける
	if cfg.AdminIDsRaw == "" {
		cfg.AdminIDsRaw = os.Getenv("ADMIN_IDS")
	}
	cfg.AdminIDs = ParseAdminIDs(cfg.AdminIDsRaw)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ORDERBOT_KAFKA__BROKERS=a:9092,b:9092 のようなリストはカンマで分ける
func envKeyValue(key, value string) (string, interface{}) {
	key = strings.TrimPrefix(key, EnvPrefix)
	key = strings.ToLower(strings.ReplaceAll(key, "__", "."))
	if key == "kafka.brokers" {
		var out []string
		for _, b := range strings.Split(value, ",") {
			if b = strings.TrimSpace(b); b != "" {
				out = append(out, b)
			}
		}
		return key, out
	}
	return key, value
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// 数字でない要素は黙って捨てる
func ParseAdminIDs(raw string) []int64 {
	ids := []int64{}
	seen := map[int64]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
