package main

import (
	"flag"
	"os"
)

// CLIConfig holds command-line configuration for the hub daemon.
type CLIConfig struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	ShowVersion bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("VHUB_CONFIG", "configs/vhubd.yaml"),
		"Path to configuration file (env: VHUB_CONFIG)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("VHUB_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: VHUB_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("VHUB_LOG_FORMAT", "json"),
		"Log format: json, text (env: VHUB_LOG_FORMAT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")

	flag.Parse()
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
