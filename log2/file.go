package log2

import (
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
}

// NewFile writes to stderr and a size rotated file. Empty path is stderr only.
func NewFile(c FileConfig, level Level) (*Log, io.Closer) {
	if c.Path == "" {
		return NewStderr(level), nopCloser{}
	}
	lj := &lumberjack.Logger{
		Filename:   c.Path,
		MaxSize:    c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		Compress:   true,
	}
	return NewWriter(io.MultiWriter(os.Stderr, lj), level), lj
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
