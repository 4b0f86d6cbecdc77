package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"kcald/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "KCALD_LOG_LEVEL")
	viper.BindEnv("persistence.saveInterval", "KCALD_SAVE_INTERVAL")
	viper.BindEnv("cache.enabled", "KCALD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "KCALD_CACHE_SIZE")
	viper.BindEnv("tracker.defaultGoal", "KCALD_DAILY_GOAL")
	viper.BindEnv("ai.projectId", "KCALD_AI_PROJECT_ID")
	viper.BindEnv("ai.location", "KCALD_AI_LOCATION")
	viper.BindEnv("ai.credentialsFile", "KCALD_AI_CREDENTIALS_FILE")
	viper.BindEnv("ai.model", "KCALD_AI_MODEL")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	applyDefaults(&conf)

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "kcald"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func applyDefaults(conf *structures.Config) {
	if conf.Tracker.DefaultGoal == 0 {
		conf.Tracker.DefaultGoal = 2000
	}
	if conf.Ai.Location == "" {
		conf.Ai.Location = "us-central1"
	}
	if conf.Ai.Model == "" {
		conf.Ai.Model = "gemini-pro-vision"
	}
	if conf.Ai.Timeout == 0 {
		conf.Ai.Timeout = 30 * time.Second
	}
	if conf.Ai.MaxImageBytes == 0 {
		conf.Ai.MaxImageBytes = 512 << 10
	}
	if conf.Ai.MaxImageDim == 0 {
		conf.Ai.MaxImageDim = 1024
	}
	if conf.Cache.TTL == 0 {
		conf.Cache.TTL = time.Minute
	}
}
