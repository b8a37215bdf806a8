package conf

import (
	"fmt"
	"strings"

	"github.com/dixithak/FileInsights/internal/pkg/database"
	"github.com/dixithak/FileInsights/internal/pkg/logger"
	"github.com/dixithak/FileInsights/internal/pkg/minio"
	"github.com/dixithak/FileInsights/internal/pkg/redis"
	"github.com/dixithak/FileInsights/internal/pkg/s3"
	"github.com/dixithak/FileInsights/internal/pkg/workerpool"
	"github.com/dixithak/FileInsights/internal/tracker/data"
	"github.com/dixithak/FileInsights/internal/tracker/queue"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Database database.Config `mapstructure:"database"`
	Redis    redis.Config    `mapstructure:"redis"`
	MinIO    minio.Config    `mapstructure:"minio"`
	S3       s3.Config       `mapstructure:"s3"`
	Log      logger.Config   `mapstructure:"log"`
	Tracker  TrackerConfig   `mapstructure:"tracker"`
}

type ServerConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	GRPCPort int    `mapstructure:"grpc_port"`
}

type TrackerConfig struct {
	// Backend memory, redis, postgres or sqlite
	Backend string `mapstructure:"backend"`
	// ObjectStore minio or s3
	ObjectStore string          `mapstructure:"object_store"`
	Tables      data.TableNames `mapstructure:"tables"`
	// BatchConcurrency bounds parallel routing of one batch
	BatchConcurrency int               `mapstructure:"batch_concurrency"`
	Workers          workerpool.Config `mapstructure:"workers"`
	Queue            QueueConfig       `mapstructure:"queue"`
}

type QueueConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	queue.Config `mapstructure:",squash"`
}

// tableEnv binds table names to their environment variables
var tableEnv = map[string]string{
	"tracker.tables.latest":  "FILE_METADATA_LATEST",
	"tracker.tables.skipped": "FILE_METADATA_SKIPPED",
	"tracker.tables.failed":  "FILE_METADATA_FAILED",
	"tracker.tables.history": "FILE_METADATA_HISTORY",
	"tracker.tables.deleted": "FILE_DELETED",
}

// LoadConfig reads path and overlays environment variables. An empty path
// loads defaults and environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range tableEnv {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.grpc_port", 9090)

	db := database.DefaultConfig()
	v.SetDefault("database.driver", db.Driver)
	v.SetDefault("database.host", db.Host)
	v.SetDefault("database.port", db.Port)
	v.SetDefault("database.user", db.User)
	v.SetDefault("database.password", db.Password)
	v.SetDefault("database.dbname", db.DBName)
	v.SetDefault("database.sslmode", db.SSLMode)
	v.SetDefault("database.timezone", db.Timezone)
	v.SetDefault("database.path", "file-insights.db")
	v.SetDefault("database.maxidleconns", db.MaxIdleConns)
	v.SetDefault("database.maxopenconns", db.MaxOpenConns)
	v.SetDefault("database.connmaxlifetime", db.ConnMaxLifetime)
	v.SetDefault("database.connmaxidletime", db.ConnMaxIdleTime)
	v.SetDefault("database.loglevel", db.LogLevel)
	v.SetDefault("database.slowthreshold", db.SlowThreshold)
	v.SetDefault("database.preparestmt", db.PrepareStmt)
	v.SetDefault("database.automigrate", db.AutoMigrate)

	rc := redis.DefaultConfig()
	v.SetDefault("redis.mode", string(rc.Mode))
	v.SetDefault("redis.master_addr", rc.MasterAddr)
	v.SetDefault("redis.pool_size", rc.PoolSize)
	v.SetDefault("redis.min_idle_conns", rc.MinIdleConns)
	v.SetDefault("redis.dial_timeout", rc.DialTimeout)
	v.SetDefault("redis.read_timeout", rc.ReadTimeout)
	v.SetDefault("redis.write_timeout", rc.WriteTimeout)
	v.SetDefault("redis.pool_timeout", rc.PoolTimeout)
	v.SetDefault("redis.max_retries", rc.MaxRetries)
	v.SetDefault("redis.min_retry_backoff", rc.MinRetryBackoff)
	v.SetDefault("redis.max_retry_backoff", rc.MaxRetryBackoff)
	v.SetDefault("redis.conn_max_idle_time", rc.ConnMaxIdleTime)

	mc := minio.DefaultConfig()
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.session_token", "")
	v.SetDefault("minio.region", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket_lookup", string(mc.BucketLookup))
	v.SetDefault("minio.request_timeout", mc.RequestTimeout)

	sc := s3.DefaultConfig()
	v.SetDefault("s3.region", sc.Region)
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.session_token", "")
	v.SetDefault("s3.use_path_style", false)
	v.SetDefault("s3.request_timeout", sc.RequestTimeout)

	lc := logger.DefaultConfig()
	v.SetDefault("log.level", lc.Level)
	v.SetDefault("log.format", lc.Format)
	v.SetDefault("log.output", lc.Output)
	v.SetDefault("log.enablecaller", lc.EnableCaller)
	v.SetDefault("log.enablestacktrace", lc.EnableStacktrace)
	v.SetDefault("log.file.filename", lc.File.Filename)
	v.SetDefault("log.file.maxsize", lc.File.MaxSize)
	v.SetDefault("log.file.maxage", lc.File.MaxAge)
	v.SetDefault("log.file.maxbackups", lc.File.MaxBackups)
	v.SetDefault("log.file.compress", lc.File.Compress)

	names := data.DefaultTableNames()
	v.SetDefault("tracker.backend", data.BackendMemory)
	v.SetDefault("tracker.object_store", data.ObjectStoreMinIO)
	v.SetDefault("tracker.tables.latest", names.Latest)
	v.SetDefault("tracker.tables.skipped", names.Skipped)
	v.SetDefault("tracker.tables.failed", names.Failed)
	v.SetDefault("tracker.tables.history", names.History)
	v.SetDefault("tracker.tables.deleted", names.Deleted)
	v.SetDefault("tracker.batch_concurrency", 8)

	wc := workerpool.DefaultConfig()
	v.SetDefault("tracker.workers.workers", wc.Workers)
	v.SetDefault("tracker.workers.max_blocking_tasks", wc.MaxBlockingTasks)
	v.SetDefault("tracker.workers.expiry_duration", wc.ExpiryDuration)

	qc := queue.DefaultConfig()
	v.SetDefault("tracker.queue.enabled", false)
	v.SetDefault("tracker.queue.poll_interval", qc.PollInterval)
	v.SetDefault("tracker.queue.batch_size", qc.BatchSize)
	v.SetDefault("tracker.queue.max_retries", qc.MaxRetries)
}

// Validate checks cross-section requirements
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	switch c.Tracker.Backend {
	case data.BackendMemory:
	case data.BackendRedis:
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	case data.BackendPostgres, data.BackendSQLite:
		c.Database.Driver = c.Tracker.Backend
		if c.Database.Driver == database.DriverSQLite {
			c.Database.MaxOpenConns = 1
			c.Database.MaxIdleConns = 1
		}
		if err := c.Database.Validate(); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	default:
		return fmt.Errorf("tracker.backend: unknown backend %q", c.Tracker.Backend)
	}

	switch c.Tracker.ObjectStore {
	case data.ObjectStoreMinIO, data.ObjectStoreS3:
	default:
		return fmt.Errorf("tracker.object_store: unknown object store %q", c.Tracker.ObjectStore)
	}

	if c.Tracker.Queue.Enabled {
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("redis (queue): %w", err)
		}
	}
	return nil
}

// UsesRedis reports whether a redis client is needed
func (c *Config) UsesRedis() bool {
	return c.Tracker.Backend == data.BackendRedis || c.Tracker.Queue.Enabled
}

// UsesDatabase reports whether a SQL database is needed
func (c *Config) UsesDatabase() bool {
	return c.Tracker.Backend == data.BackendPostgres || c.Tracker.Backend == data.BackendSQLite
}
