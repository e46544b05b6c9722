package config

import (
	"log"

	"github.com/spf13/viper"
)

type Database struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"ssl-mode"`
}

type KafkaWriter struct {
	BatchSize      int `mapstructure:"batch-size"`
	BatchTimeoutMs int `mapstructure:"batch-timeout-ms"`
}

type KafkaBroker struct {
	URL string `mapstructure:"url"`
}

type KafkaTopic struct {
	SettlementEvents string `mapstructure:"settlement-events"`
}

type Kafka struct {
	Writer KafkaWriter `mapstructure:"writer"`
	Broker KafkaBroker `mapstructure:"broker"`
	Topic  KafkaTopic  `mapstructure:"topic"`
}

type PayPal struct {
	ClientID           string `mapstructure:"client-id"`
	ClientSecret       string `mapstructure:"client-secret"`
	TokenURL           string `mapstructure:"token-url"`
	OrdersURL          string `mapstructure:"orders-url"`
	CaptureURLTemplate string `mapstructure:"capture-url-template"`
	RefundURLTemplate  string `mapstructure:"refund-url-template"`
	TokenMarginSeconds int    `mapstructure:"token-margin-seconds"`
	TimeoutMs          int    `mapstructure:"timeout-ms"`
}

type Application struct {
	BaseURL string `mapstructure:"base-url"`
}

type Server struct {
	Port string `mapstructure:"port"`
}

type Metrics struct {
	URL          string `mapstructure:"url"`
	IntervalMs   int    `mapstructure:"interval-ms"`
	CommonLabels string `mapstructure:"common-labels"`
}

type Logs struct {
	URL string `mapstructure:"url"`
}

type Config struct {
	Database    Database    `mapstructure:"database"`
	Kafka       Kafka       `mapstructure:"kafka"`
	PayPal      PayPal      `mapstructure:"paypal"`
	Application Application `mapstructure:"application"`
	Server      Server      `mapstructure:"server"`
	Metrics     Metrics     `mapstructure:"metrics"`
	Logs        Logs        `mapstructure:"logs"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func MustLoadConfig(path string) *Config {
	config, err := LoadConfig(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return config
}
