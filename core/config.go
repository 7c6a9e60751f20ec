package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug            bool
		TestMode         bool
		AppName          string
		Env              string
		Build            string
		WorkDir          string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		RollbarToken     string
		SendgridApiKey   string
		WritingCurrency  string // ISO 4217 code writing orders are priced in

		Server    ServerConfig
		Database  DatabaseConfig
		ImageHost ImageHostConfig
		Tenancy   TenancyConfig
	}

	ServerConfig struct {
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
		BodyLimit       string
		AuthSigningKey  string // shared HS256 key of the auth provider's JWT template
		AuthIssuer      string
		DisableReqLogs  bool
		DisableRecovery bool
	}

	DatabaseConfig struct {
		Engine        string // postgres | sqlite
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		Name          string
		DisableTLS    bool
		Path          string // sqlite only
	}

	ImageHostConfig struct {
		BaseURL       string
		APIKey        string
		Expiration    time.Duration // 0: keep forever
		MaxUploadSize int64
	}

	TenancyConfig struct {
		BaseDomain    string
		DefaultTenant string
		Header        string
	}
)

const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewConfig reads the configuration of the current ENV (DEV by default) from
// config/.env.<env> (if present) and the environment.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "Edvise")
	conf.SetDefault("build", "dev")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "Edvise <noreply@localhost>")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("writingCurrency", "USD")

	conf.SetDefault("serverHost", ":8000")
	conf.SetDefault("serverDebugHost", ":4000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("serverBodyLimit", "12M")
	conf.SetDefault("authSigningKey", "dev-signing-key-change-me")
	conf.SetDefault("authIssuer", "")

	conf.SetDefault("dbEngine", EnginePostgres)
	conf.SetDefault("dbUser", "edvise")
	conf.SetDefault("dbPassword", "edvise")
	conf.SetDefault("dbAdminUser", "postgres")
	conf.SetDefault("dbAdminPassword", "postgres")
	conf.SetDefault("dbHost", "localhost")
	conf.SetDefault("dbPort", "5432")
	conf.SetDefault("dbName", "edvise")
	conf.SetDefault("dbDisableTLS", true)
	conf.SetDefault("dbPath", "var/edvise.db")

	conf.SetDefault("imageHostBaseURL", "https://api.imgbb.com")
	conf.SetDefault("imageHostAPIKey", "")
	conf.SetDefault("imageHostExpiration", time.Duration(0))
	conf.SetDefault("imageHostMaxUploadSize", int64(8<<20))

	conf.SetDefault("tenancyBaseDomain", "localhost")
	conf.SetDefault("tenancyDefaultTenant", "")
	conf.SetDefault("tenancyHeader", "X-Tenant")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	from, err := mail.ParseAddress(conf.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}
	testMode := conf.GetBool("testMode")

	return &Config{
		Debug:            conf.GetBool("debug"),
		TestMode:         testMode,
		AppName:          conf.GetString("appName"),
		Env:              env,
		Build:            conf.GetString("build"),
		WorkDir:          wd,
		FrontendBaseURL:  strings.TrimSuffix(conf.GetString("frontendBaseURL"), "/"),
		DefaultFromEmail: *from,
		RollbarToken:     conf.GetString("rollbarToken"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		WritingCurrency:  CleanCurrency(conf.GetString("writingCurrency")),
		Server: ServerConfig{
			Host:            conf.GetString("serverHost"),
			DebugHost:       conf.GetString("serverDebugHost"),
			ShutdownTimeout: conf.GetDuration("serverShutdownTimeout"),
			BodyLimit:       conf.GetString("serverBodyLimit"),
			AuthSigningKey:  conf.GetString("authSigningKey"),
			AuthIssuer:      conf.GetString("authIssuer"),
			DisableReqLogs:  testMode,
			DisableRecovery: testMode,
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("dbEngine"),
			User:          conf.GetString("dbUser"),
			Password:      conf.GetString("dbPassword"),
			AdminUser:     conf.GetString("dbAdminUser"),
			AdminPassword: conf.GetString("dbAdminPassword"),
			Host:          conf.GetString("dbHost"),
			Port:          conf.GetString("dbPort"),
			Name:          conf.GetString("dbName"),
			DisableTLS:    conf.GetBool("dbDisableTLS"),
			Path:          conf.GetString("dbPath"),
		},
		ImageHost: ImageHostConfig{
			BaseURL:       strings.TrimSuffix(conf.GetString("imageHostBaseURL"), "/"),
			APIKey:        conf.GetString("imageHostAPIKey"),
			Expiration:    conf.GetDuration("imageHostExpiration"),
			MaxUploadSize: conf.GetInt64("imageHostMaxUploadSize"),
		},
		Tenancy: TenancyConfig{
			BaseDomain:    conf.GetString("tenancyBaseDomain"),
			DefaultTenant: conf.GetString("tenancyDefaultTenant"),
			Header:        conf.GetString("tenancyHeader"),
		},
	}
}
