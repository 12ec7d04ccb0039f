package gstorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"cloud.google.com/go/storage"
	"github.com/L4er70/ContactBook/server/logger"
	"google.golang.org/api/option"
)

var (
	ErrObjectNotExist = storage.ErrObjectNotExist

	logg = logger.NewLogger()
)

// GStorage copies files between the local disk & a single bucket,
// under an optional object name prefix.
type GStorage struct {
	storageClient *storage.Client
	bucket        string
	prefix        string
}

func NewGStorage(ctx context.Context, credentialsFilePath, bucket, prefix string) (*GStorage, error) {
	var client *storage.Client
	var err error

	if credentialsFilePath != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFilePath))
	} else {
		client, err = storage.NewClient(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("NewGStorage: %w", err)
	}

	return &GStorage{storageClient: client, bucket: bucket, prefix: prefix}, nil
}

// ObjectName returns the full object name for 'name' within the configured prefix
func (gs *GStorage) ObjectName(name string) string {
	if gs.prefix == "" {
		return name
	}
	return path.Join(gs.prefix, name)
}

// UploadFile uploads the local file at 'filePath' as object 'name'.
func (gs *GStorage) UploadFile(ctx context.Context, filePath, name string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()

	object := gs.ObjectName(name)
	wc := gs.storageClient.Bucket(gs.bucket).Object(object).NewWriter(ctx)
	if _, err = io.Copy(wc, f); err != nil {
		wc.Close()
		return fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}

	logg.Infof("Blob %v uploaded to bucket %v", object, gs.bucket)
	return nil
}

// DownloadFile downloads object 'name' to 'destFileName'.
// ErrObjectNotExist is returned untouched so callers can detect a missing backup.
func (gs *GStorage) DownloadFile(ctx context.Context, name, destFileName string) error {
	object := gs.ObjectName(name)

	rc, err := gs.storageClient.Bucket(gs.bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return ErrObjectNotExist
	}
	if err != nil {
		return fmt.Errorf("Object(%q).NewReader: %w", object, err)
	}
	defer rc.Close()

	f, err := os.OpenFile(destFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("os.OpenFile: %w", err)
	}

	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return fmt.Errorf("io.Copy: %w", err)
	}

	if err = f.Close(); err != nil {
		return fmt.Errorf("f.Close: %w", err)
	}

	logg.Infof("Blob %v downloaded to local file %v", object, destFileName)
	return nil
}

func (gs *GStorage) Close() error {
	return gs.storageClient.Close()
}
