package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	DB      DBConfig
	HTTP    HTTPConfig
	Session SessionConfig
	Sync    SyncConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	Driver      string // postgres | memory (demo sin base de datos)
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool

	MaxConns       int32
	MinConns       int32
	ConnectRetries int // reintentos del ping inicial (la base puede tardar en aceptar conexiones)
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins string
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SessionConfig sesiones de servidor transportadas en cookie.
type SessionConfig struct {
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

// SyncConfig puente con el agente de escritorio del software contable.
type SyncConfig struct {
	AgentSecret   string // firma HS256 de los tokens de agente; vacío = endpoints de agente deshabilitados
	AgentIssuer   string
	StatusTimeout time.Duration // ventana para considerar "conectado"
	EvictTimeout  time.Duration // ventana para dejar de rastrear al agente
	SweepInterval time.Duration
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, SESSION_TTL_HOURS, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.MergeInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "bitumen-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			Driver:      getString(v, "DB_DRIVER", "postgres"),
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "bitumen"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			AutoMigrate: getBool(v, "DB_AUTO_MIGRATE", true),

			MaxConns:       int32(getInt(v, "DB_MAX_CONNS", 20)),
			MinConns:       int32(getInt(v, "DB_MIN_CONNS", 2)),
			ConnectRetries: getInt(v, "DB_CONNECT_RETRIES", 5),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:        getInt(v, "HTTP_PORT", 8080),
			CORSOrigins: getString(v, "CORS_ORIGINS", "http://localhost:5173"),
		},
		Session: SessionConfig{
			TTL:          time.Duration(getInt(v, "SESSION_TTL_HOURS", 7*24)) * time.Hour,
			CookieName:   getString(v, "SESSION_COOKIE_NAME", "bc_session"),
			CookieSecure: getBool(v, "SESSION_COOKIE_SECURE", false),
		},
		Sync: SyncConfig{
			AgentSecret:   getString(v, "SYNC_AGENT_SECRET", ""),
			AgentIssuer:   getString(v, "SYNC_AGENT_ISSUER", "bitumen-api"),
			StatusTimeout: seconds(getInt(v, "SYNC_STATUS_TIMEOUT_SECONDS", 90)),
			EvictTimeout:  seconds(getInt(v, "SYNC_EVICT_TIMEOUT_SECONDS", 600)),
			SweepInterval: seconds(getInt(v, "SYNC_SWEEP_INTERVAL_SECONDS", 60)),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL_HOURS debe ser positivo")
	}
	if c.Sync.StatusTimeout <= 0 || c.Sync.EvictTimeout <= 0 || c.Sync.SweepInterval <= 0 {
		return fmt.Errorf("config: los tiempos SYNC_* deben ser positivos")
	}
	if c.Sync.EvictTimeout < c.Sync.StatusTimeout {
		return fmt.Errorf("config: SYNC_EVICT_TIMEOUT_SECONDS no puede ser menor que SYNC_STATUS_TIMEOUT_SECONDS")
	}
	if c.DB.MaxConns < 1 || c.DB.MinConns < 0 || c.DB.MinConns > c.DB.MaxConns {
		return fmt.Errorf("config: DB_MIN_CONNS/DB_MAX_CONNS fuera de rango")
	}
	if c.DB.Driver != "postgres" && c.DB.Driver != "memory" {
		return fmt.Errorf("config: DB_DRIVER desconocido %q", c.DB.Driver)
	}
	return nil
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
