package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sia-robotics/sia-server/internal/api/http"
	"github.com/sia-robotics/sia-server/internal/auth"
	"github.com/sia-robotics/sia-server/internal/db"
)

type Config struct {
	Log       LogConfig
	Http      http.Config
	Db        db.Config
	Auth      auth.Config
	Bootstrap BootstrapConfig
}

// BootstrapConfig seeds the first Master account on a fresh database.
// Leaving the email empty skips bootstrapping.
type BootstrapConfig struct {
	MasterName     string `mapstructure:"master_name"`
	MasterEmail    string `mapstructure:"master_email"`
	MasterPassword string `mapstructure:"master_password"`
}

var config Config

func InitConfig() {
	var err error

	_ = godotenv.Load()

	viper.SetConfigName("application")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./cmd/sia-server")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.BindEnv("db.url", "DATABASE_URL")
	_ = viper.BindEnv("auth.secret", "JWT_SECRET")
	_ = viper.BindEnv("bootstrap.master_password", "BOOTSTRAP_MASTER_PASSWORD")

	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		panic(err)
	}

	// Initialize logger with configured log level
	initLogger(config.Log.Level)

	// Pretty print config as JSON (only at DEBUG level)
	if strings.ToUpper(config.Log.Level) == LOG_LEVEL_DEBUG {
		configJSON, err := json.MarshalIndent(config, "", "  ")
		if err == nil {
			fmt.Println("Config loaded:")
			fmt.Println(string(configJSON))
		}
	}
}
