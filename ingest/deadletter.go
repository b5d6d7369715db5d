package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/emzola/bookrating/data"
)

// DeadLetter receives rating batches that could not be stored.
type DeadLetter interface {
	Write(batch []data.Rating, cause error) error
	Close() error
}

// FileDeadLetter writes failed rating rows to ratings-<run>.csv in a
// directory, in the same column layout as the ratings source plus the error.
// The file is only created once a batch fails.
type FileDeadLetter struct {
	path string
	file *os.File
	w    *csv.Writer
	rows int
}

// NewFileDeadLetter returns a sink writing under dir for the given run.
func NewFileDeadLetter(dir, runID string) (*FileDeadLetter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileDeadLetter{path: filepath.Join(dir, "ratings-"+runID+".csv")}, nil
}

func (d *FileDeadLetter) Write(batch []data.Rating, cause error) error {
	if d.w == nil {
		f, err := os.OpenFile(d.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return err
		}
		d.file = f
		d.w = csv.NewWriter(f)
		if err := d.w.Write([]string{"user_id", "book_id", "rating", "error"}); err != nil {
			return err
		}
	}
	msg := cause.Error()
	for _, r := range batch {
		record := []string{
			strconv.FormatInt(r.UserID, 10),
			strconv.FormatInt(r.EditionID, 10),
			strconv.Itoa(int(r.Rating)),
			msg,
		}
		if err := d.w.Write(record); err != nil {
			return err
		}
	}
	d.rows += len(batch)
	d.w.Flush()
	return d.w.Error()
}

// Path returns the file location, which exists only if Rows is non-zero.
func (d *FileDeadLetter) Path() string {
	return d.path
}

func (d *FileDeadLetter) Rows() int {
	return d.rows
}

func (d *FileDeadLetter) Close() error {
	if d.file == nil {
		return nil
	}
	d.w.Flush()
	if err := d.w.Error(); err != nil {
		d.file.Close()
		return err
	}
	return d.file.Close()
}

// UploadDeadLetter copies a closed dead-letter file to the bucket under the
// dead-letter/ prefix and returns the object key.
func UploadDeadLetter(ctx context.Context, client *s3.Client, bucket string, d *FileDeadLetter) (string, error) {
	f, err := os.Open(d.Path())
	if err != nil {
		return "", err
	}
	defer f.Close()
	key := "dead-letter/" + filepath.Base(d.Path())
	uploader := manager.NewUploader(client)
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("uploading dead letters: %w", err)
	}
	return key, nil
}
