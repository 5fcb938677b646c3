package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// File writes the report body to a local file. It is the last link of the
// chain so a report is never lost when mail is not set up.
type File struct {
	path string
}

func NewFile(path string) *File { return &File{path: path} }

func (f *File) Name() string     { return "file" }
func (f *File) Configured() bool { return f.path != "" }
func (f *File) Path() string     { return f.path }

func (f *File) Send(ctx context.Context, msg Message) error {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report dir: %w", err)
		}
	}

	lock := flock.New(f.path + ".lock")
	ok, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("report lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("report lock %s not acquired", lock.Path())
	}
	defer lock.Unlock()

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(msg.Body), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
