package config

import "time"

type Config struct {
	Service     *ServiceConfig
	Redis       *RedisConfig
	Postgres    *PostgresConfig
	NATS        *NATSConfig
	Oracle      *OracleConfig
	Push        *PushConfig
	Worker      *WorkerConfig
	Logger      *LoggerConfig
	Tracer      *TracerConfig
	SecretToken string
}

type ServiceConfig struct {
	Name string
	Env  string
	Addr string
}

type RedisConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
	PingTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

type NATSConfig struct {
	URL            string
	ConnectTimeout time.Duration
}

// OracleConfig points at the external account-validation service.
type OracleConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PushConfig points at the notification delivery service.
type PushConfig struct {
	BaseURL string
	Timeout time.Duration
}

type WorkerConfig struct {
	NotificationGroup string
}

type LoggerConfig struct {
	Level  string
	Format string
}

type TracerConfig struct {
	Address string
}
