// Package logsink builds the watchdog's reporting sink: a console stream
// plus an append-only log file with size-bounded rotation. Rotated files
// are gzip-compressed and the oldest are dropped once the retention count
// is reached.
package logsink

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
)

// RotatingWriter appends to a single log file and rotates it when a write
// would push it past maxBytes. Backups live next to the file as
// name.1.gz .. name.N.gz, newest first.
type RotatingWriter struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	backups  int
	file     *os.File
	size     int64
}

func NewRotatingWriter(path string, maxBytes int64, backups int) (*RotatingWriter, error) {
	w := &RotatingWriter{path: path, maxBytes: maxBytes, backups: backups}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotatingWriter) open() error {
	file, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	w.file = file
	w.size = info.Size()
	return nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.maxBytes > 0 && w.size+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			// Keep appending to the oversized file rather than dropping lines.
			fmt.Fprintf(os.Stderr, "logsink: rotation failed: %v\n", err)
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}

	var rotateErr error
	if w.backups > 0 {
		os.Remove(w.backupName(w.backups))
		for i := w.backups - 1; i >= 1; i-- {
			os.Rename(w.backupName(i), w.backupName(i+1))
		}
		rotateErr = compressFile(w.backupName(1), w.path)
	}
	if rotateErr == nil {
		rotateErr = os.Remove(w.path)
	}
	// Always reopen so logging continues even when rotation failed.
	if err := w.open(); err != nil {
		return err
	}
	return rotateErr
}

func (w *RotatingWriter) backupName(i int) string {
	return fmt.Sprintf("%s.%d.gz", w.path, i)
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func compressFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		out.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// New builds the watchdog logger writing to both the console and the
// rotating file. The returned closer owns the file handle.
func New(path string, maxBytes int64, backups int, level zerolog.Level) (zerolog.Logger, io.Closer, error) {
	rw, err := NewRotatingWriter(path, maxBytes, backups)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(zerolog.MultiLevelWriter(console, rw)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return logger, rw, nil
}
