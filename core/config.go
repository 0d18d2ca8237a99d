package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *Config

type (
	ServerConfig struct {
		Addr            string
		ShutdownTimeout time.Duration
	}

	// UpstreamConfig holds the remote school API settings. The portal only
	// consumes this API; it does not implement it.
	UpstreamConfig struct {
		APIBaseURL         string
		SubmissionEndpoint string // admission form sink; empty -> email fallback
		Timeout            time.Duration
	}

	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		AppName  string
		Build    string

		Server   ServerConfig
		Upstream UpstreamConfig

		DefaultFromEmail string
		AdmissionEmail   string // admission office inbox for email submissions
		SendgridApiKey   string
		RollbarToken     string
		RedisAddr        string // empty disables the banner cache
	}
)

func init() {
	Conf = loadConfig()
}

func loadConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "AlrashidPortal")
	v.SetDefault("build", "dev")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("shutdownTimeout", 10*time.Second)
	v.SetDefault("apiBaseURL", "http://localhost:5000")
	v.SetDefault("submissionEndpoint", "")
	v.SetDefault("upstreamTimeout", 10*time.Second)
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("admissionEmail", "admission@localhost")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("testMode"),
		Env:      env,
		AppName:  v.GetString("appName"),
		Build:    v.GetString("build"),
		Server: ServerConfig{
			Addr:            v.GetString("serverAddr"),
			ShutdownTimeout: v.GetDuration("shutdownTimeout"),
		},
		Upstream: UpstreamConfig{
			APIBaseURL:         strings.TrimRight(v.GetString("apiBaseURL"), "/"),
			SubmissionEndpoint: v.GetString("submissionEndpoint"),
			Timeout:            v.GetDuration("upstreamTimeout"),
		},
		DefaultFromEmail: v.GetString("defaultFromEmail"),
		AdmissionEmail:   v.GetString("admissionEmail"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		RedisAddr:        v.GetString("redisAddr"),
	}
}
