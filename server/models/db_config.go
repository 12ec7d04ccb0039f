package models

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	sqliteEncrypt "github.com/Daskott/gorm-sqlite-cipher"
	"github.com/L4er70/ContactBook/server/auth"
	"github.com/L4er70/ContactBook/server/logger"
	"github.com/L4er70/ContactBook/shared"
	"github.com/L4er70/ContactBook/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const (
	DB_NAME = "contactbook.db"

	SEED_ADMIN_EMAIL    = "admin@contactsbook.com"
	SEED_ADMIN_PASSWORD = "Admin@123"
)

var logg = logger.NewLogger()
var db *gorm.DB

// AutoMigrate opens the database, migrates the schema and inserts seed data
func AutoMigrate(dbConfig shared.DatabaseConfig, dbRootDir string, seedAdmin bool) error {
	err := OpenDB(dbConfig, dbRootDir)
	if err != nil {
		return err
	}

	err = db.AutoMigrate(
		&JobStatus{}, &Job{},
		&Role{}, &User{},
		&Contact{}, &Email{}, &Phone{}, &Address{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return populateDBWithSeedData(seedAdmin)
}

// OpenDB connects to the database configured by 'dbConfig'
func OpenDB(dbConfig shared.DatabaseConfig, dbRootDir string) error {
	var dialector gorm.Dialector

	switch dbConfig.Driver {
	case shared.POSTGRES_DRIVER:
		dialector = postgres.Open(dbConfig.DSN)
	case shared.SQLITE_DRIVER:
		dsn, err := sqliteDSN(dbConfig.PassPhrase, dbRootDir)
		if err != nil {
			return fmt.Errorf("failed to set sqlite DSN: %w", err)
		}
		dialector = sqliteEncrypt.Open(dsn)
	default:
		return fmt.Errorf("unsupported database driver %q", dbConfig.Driver)
	}

	var err error
	db, err = gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				LogLevel:                  gormLogger.Silent,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	return nil
}

// Ping checks that the database connection is still alive
func Ping() error {
	if db == nil {
		return errors.New("database is not open")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}

// Close closes the underlying database connection
func Close() error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// CheckpointSqlite flushes the sqlite write-ahead log into the main db file
func CheckpointSqlite() error {
	return db.Exec("PRAGMA wal_checkpoint(FULL)").Error
}

func DbDirectory(dbRootDir string) (string, error) {
	dbDir := filepath.Join(dbRootDir, "db")

	err := utils.CreateDirIfNotExist(dbDir)
	if err != nil {
		return "", err
	}

	return dbDir, nil
}

func DbFilePath(dbRootDir string) string {
	return filepath.Join(dbRootDir, "db", DB_NAME)
}

// InitializeTestDb creates a fresh sqlite database in a temp directory.
func InitializeTestDb() {
	dir, err := os.MkdirTemp("", "contactbook-test-")
	if err != nil {
		logg.Fatal(err)
	}

	auth.HashCost = bcrypt.MinCost

	err = AutoMigrate(shared.DatabaseConfig{Driver: shared.SQLITE_DRIVER, PassPhrase: "test-pass"}, dir, false)
	if err != nil {
		logg.Fatal(err)
	}
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func populateDBWithSeedData(seedAdmin bool) error {
	if err := db.First(&JobStatus{}).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Info("Inserting seed data into 'JobStatus'")
		statuses := make([]JobStatus, 0, len(JobStatusNames))
		for _, name := range JobStatusNames {
			statuses = append(statuses, JobStatus{Name: name})
		}

		err = db.Create(&statuses).Error
		if err != nil {
			return err
		}
	}

	if err := db.First(&Role{}).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Info("Inserting seed data into 'Role'")
		err = db.Create(&[]Role{{Name: ADMIN_USER_ROLE}, {Name: BASIC_USER_ROLE}, {Name: READONLY_USER_ROLE}}).Error
		if err != nil {
			return err
		}
	}

	if !seedAdmin {
		return nil
	}

	_, err := FindUserBy("email", SEED_ADMIN_EMAIL)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	adminRole, err := FindRole(ADMIN_USER_ROLE)
	if err != nil {
		return err
	}

	logg.Infof("Inserting seed admin '%s'", SEED_ADMIN_EMAIL)
	return CreateUser(&User{
		FirstName: "Admin",
		LastName:  "User",
		Email:     SEED_ADMIN_EMAIL,
		Password:  SEED_ADMIN_PASSWORD,
		RoleID:    adminRole.ID,
	})
}

func sqliteDSN(passPhrase string, dbRootDir string) (string, error) {
	dbDir, err := DbDirectory(dbRootDir)
	if err != nil {
		return "", err
	}

	dbName := fmt.Sprintf("file:%v", filepath.Join(dbDir, DB_NAME))

	return fmt.Sprintf(
		"%v?_pragma_key=%s&_pragma_cipher_page_size=4096&_journal_mode=WAL&_foreign_keys=1",
		dbName,
		passPhrase,
	), nil
}
