// config/config.go
package config

import (
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

type NATSConfig struct {
	URL        string `mapstructure:"url"`
	LockBucket string `mapstructure:"lockBucket"`
}

type SchedulerConfig struct {
	LockTTLSeconds   int     `mapstructure:"lockTTLSeconds"`
	AssignmentWeight float64 `mapstructure:"assignmentWeight"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoadConfig reads the YAML config file and overrides it with environment
// variables. A missing file is fine; env vars alone can configure the server.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	viper.BindEnv("mongo.uri", "MONGO_URI")
	viper.BindEnv("mongo.dbName", "MONGO_DBNAME")
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("jwt.secret", "JWT_SECRET")
	viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	viper.BindEnv("nats.url", "NATS_URL")
	viper.BindEnv("nats.lockBucket", "NATS_LOCK_BUCKET")
	viper.BindEnv("scheduler.lockTTLSeconds", "SCHEDULER_LOCK_TTL_SECONDS")
	viper.BindEnv("scheduler.assignmentWeight", "SCHEDULER_ASSIGNMENT_WEIGHT")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("mongo.dbName", "magacin_tracker")
	viper.SetDefault("nats.lockBucket", "suggestion-locks")
	viper.SetDefault("scheduler.lockTTLSeconds", 600)
	viper.SetDefault("scheduler.assignmentWeight", 5)

	err = viper.ReadInConfig()
	if err != nil {
		// Only report errors other than "file not found".
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return
}
