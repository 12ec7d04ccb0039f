package server

import (
	"context"
	"errors"
	"time"

	"github.com/L4er70/ContactBook/server/gstorage"
	"github.com/L4er70/ContactBook/server/models"
	"github.com/L4er70/ContactBook/server/work"
	"github.com/L4er70/ContactBook/shared"
	"github.com/L4er70/ContactBook/utils"
)

const (
	BACKUP_SQLITE_DB_JOB = "backupSqliteDb"
	STORAGE_TIMEOUT      = 50 * time.Second

	// BACKUP_AFTER_CHANGE_SECONDS delays the backup that follows a contact change,
	// so a burst of edits results in a single upload
	BACKUP_AFTER_CHANGE_SECONDS = 60
)

// backupQueue is set when sqlite backups are enabled
var backupQueue *work.WorkerPoolAdapter

// sqliteBackup keeps the local sqlite file & its copy in cloud storage in sync
type sqliteBackup struct {
	storage   *gstorage.GStorage
	dbRootDir string
}

func newSqliteBackup(config *shared.ServerConfig, dbRootDir string) (*sqliteBackup, error) {
	ctx, cancel := context.WithTimeout(context.Background(), STORAGE_TIMEOUT)
	defer cancel()

	storage, err := gstorage.NewGStorage(ctx,
		config.Google.ApplicationCredentials,
		config.Google.Storage.Bucket,
		config.Google.Storage.Prefix,
	)
	if err != nil {
		return nil, err
	}

	return &sqliteBackup{storage: storage, dbRootDir: dbRootDir}, nil
}

// run uploads the sqlite db file after flushing its write-ahead log
func (backup *sqliteBackup) run(map[string]interface{}) error {
	if err := models.CheckpointSqlite(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), STORAGE_TIMEOUT)
	defer cancel()

	return backup.storage.UploadFile(ctx, models.DbFilePath(backup.dbRootDir), models.DB_NAME)
}

// restore pulls the last backup when there is no local db file yet
func (backup *sqliteBackup) restore() error {
	dbFilePath := models.DbFilePath(backup.dbRootDir)
	if utils.FileExist(dbFilePath) {
		return nil
	}

	if _, err := models.DbDirectory(backup.dbRootDir); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), STORAGE_TIMEOUT)
	defer cancel()

	err := backup.storage.DownloadFile(ctx, models.DB_NAME, dbFilePath)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		logg.Info("No sqlite backup found in storage, starting with a new database")
		return nil
	}

	return err
}

func registerJobHandlers(wpa *work.WorkerPoolAdapter, backup *sqliteBackup) error {
	if backup == nil {
		return nil
	}

	return wpa.Register(BACKUP_SQLITE_DB_JOB, backup.run)
}

func enqueueJobs(wpa *work.WorkerPoolAdapter, config *shared.ServerConfig, backup *sqliteBackup) error {
	if backup == nil {
		return nil
	}

	backupQueue = wpa
	return wpa.PeriodicallyPerform(config.Google.Storage.SqliteBackupSchedule, backupJobParams())
}

func backupJobParams() work.JobParams {
	return work.JobParams{
		Name:    BACKUP_SQLITE_DB_JOB,
		Handler: BACKUP_SQLITE_DB_JOB,
		Args:    map[string]interface{}{},
	}
}

// scheduleBackupAfterChange queues a sqlite backup shortly after contacts were written.
// Only one backup job is pending at a time, later changes fold into it.
func scheduleBackupAfterChange() {
	if backupQueue == nil {
		return
	}

	if err := backupQueue.PerformIn(BACKUP_AFTER_CHANGE_SECONDS, backupJobParams()); err != nil {
		logg.Error(err)
	}
}
