package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

const defaultMaxSize = 10 * 1024 * 1024 // 10MB

// RotatingWriter is a log file that moves itself to path+".1" once it
// grows past maxSize. Only one backup is kept.
type RotatingWriter struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	size    int64
	maxSize int64

	// errOut receives rotation failures, which cannot go through the
	// logger that writes here
	errOut io.Writer
}

// Setup sends the standard logger to stdout and to the file at logPath,
// and returns the combined writer for other consumers (gin).
func Setup(logPath string, maxSize int64) (*RotatingWriter, io.Writer, error) {
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}

	rw, err := Open(logPath, maxSize)
	if err != nil {
		return nil, nil, err
	}

	multi := io.MultiWriter(os.Stdout, rw)
	log.SetOutput(multi)
	return rw, multi, nil
}

// Open opens (or creates) the log file. An oversized file left by a
// previous run is rotated first.
func Open(logPath string, maxSize int64) (*RotatingWriter, error) {
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxSize {
		if err := os.Rename(logPath, logPath+".1"); err != nil {
			fmt.Fprintf(os.Stderr, "[logging] rotate %s: %v\n", logPath, err)
		}
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	info, _ := f.Stat()
	size := int64(0)
	if info != nil {
		size = info.Size()
	}

	return &RotatingWriter{
		file:    f,
		path:    logPath,
		size:    size,
		maxSize: maxSize,
		errOut:  os.Stderr,
	}, nil
}

func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err = w.file.Write(p)
	w.size += int64(n)

	if w.size > w.maxSize {
		w.rotate()
	}

	return n, err
}

// rotate swaps in a fresh file. On failure the current handle stays in
// use and the next attempt waits for another maxSize bytes.
func (w *RotatingWriter) rotate() {
	// Keep one backup
	if err := os.Rename(w.path, w.path+".1"); err != nil {
		fmt.Fprintf(w.errOut, "[logging] rotate %s: %v\n", w.path, err)
		w.size = 0
		return
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		fmt.Fprintf(w.errOut, "[logging] reopen %s: %v\n", w.path, err)
		w.size = 0
		return
	}

	w.file.Close()
	w.file = f
	w.size = 0
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
