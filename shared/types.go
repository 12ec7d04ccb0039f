package shared

import "fmt"

const (
	SQLITE_DRIVER   = "sqlite"
	POSTGRES_DRIVER = "postgres"
)

type ServerConfig struct {
	Database    DatabaseConfig    `mapstructure:"database" validate:"required"`
	ContactBook ContactBookConfig `mapstructure:"contactbook" validate:"required"`
	Google      GoogleConfig      `mapstructure:"google"`
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver" validate:"required,oneof=sqlite postgres"`
	PassPhrase string `mapstructure:"passPhrase"`
	DSN        string `mapstructure:"dsn"`
}

type ContactBookConfig struct {
	PrivateKeyPem string         `mapstructure:"privateKeyPem" validate:"required"`
	TokenTTLHours int            `mapstructure:"tokenTTLHours" validate:"omitempty,min=1"`
	SeedAdmin     bool           `mapstructure:"seedAdmin"`
	Cron          CronConfig     `mapstructure:"cron" validate:"required"`
	Listener      ListenerConfig `mapstructure:"listener" validate:"required"`
}

type GoogleConfig struct {
	ApplicationCredentials string        `mapstructure:"applicationCredentials"`
	Storage                StorageConfig `mapstructure:"storage"`
}

type CronConfig struct {
	TimeZone string `mapstructure:"timeZone" validate:"required"`
}

type ListenerConfig struct {
	Port int `mapstructure:"port" validate:"required"`
}

type StorageConfig struct {
	Bucket                    string `mapstructure:"bucket" validate:"required_with=EnableSqliteBackupAndSync"`
	Prefix                    string `mapstructure:"prefix" validate:"required_with=EnableSqliteBackupAndSync"`
	SqliteBackupSchedule      string `mapstructure:"sqliteBackupSchedule" validate:"required_with=EnableSqliteBackupAndSync"`
	EnableSqliteBackupAndSync bool   `mapstructure:"enableSqliteBackupAndSync"`
}

// CheckDriverSettings verifies the settings each database driver depends on.
func (dbConfig DatabaseConfig) CheckDriverSettings() error {
	switch dbConfig.Driver {
	case SQLITE_DRIVER:
		if dbConfig.PassPhrase == "" {
			return fmt.Errorf("database.passPhrase is required for the %s driver", SQLITE_DRIVER)
		}
	case POSTGRES_DRIVER:
		if dbConfig.DSN == "" {
			return fmt.Errorf("database.dsn is required for the %s driver", POSTGRES_DRIVER)
		}
	default:
		return fmt.Errorf("unsupported database driver %q", dbConfig.Driver)
	}

	return nil
}

// BackupEnabled reports whether the sqlite database should be synced to cloud storage.
func (config *ServerConfig) BackupEnabled() bool {
	return config.Google.Storage.EnableSqliteBackupAndSync && config.Database.Driver == SQLITE_DRIVER
}
