package commands

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Task       string  `mapstructure:"task"`
	Dataset    string  `mapstructure:"dataset"`
	Target     string  `mapstructure:"target"`
	Workers    int     `mapstructure:"workers"`
	Output     string  `mapstructure:"output"`
	Format     string  `mapstructure:"format"`
	RunDir     string  `mapstructure:"run_dir"`
	MaxTrials  int     `mapstructure:"max_trials"`
	TimeBudget int     `mapstructure:"time_budget_s"`
	CVFolds    int     `mapstructure:"cv_folds"`
	Metric     string  `mapstructure:"metric"`
	Direction  string  `mapstructure:"direction"`
	Ensemble   bool    `mapstructure:"ensemble"`
	Seed       int64   `mapstructure:"random_seed"`
	Split      float64 `mapstructure:"validation_split"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{}
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".autolytics")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
