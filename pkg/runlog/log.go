package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/newtcheck/pkg/runner"
	"github.com/newtron-network/newtcheck/pkg/util"
)

// FileLog appends run records to a JSON-lines file.
type FileLog struct {
	path     string
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	rotation RotationConfig
	log      *logrus.Entry
}

// RotationConfig configures run log rotation
type RotationConfig struct {
	MaxSize    int64 // Max file size in bytes before rotation
	MaxBackups int   // Max number of old files to retain
}

// DefaultRotation is the rotation used by the CLI.
var DefaultRotation = RotationConfig{MaxSize: 8 << 20, MaxBackups: 3}

// Open opens or creates the run log at path.
func Open(path string, rotation RotationConfig) (*FileLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating run log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	return &FileLog{
		path:     path,
		file:     file,
		encoder:  json.NewEncoder(file),
		rotation: rotation,
		log:      util.WithField("runlog", path),
	}, nil
}

// Append writes r as one line, rotating first if the file is full.
func (l *FileLog) Append(r *Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("run log %s is closed", l.path)
	}
	if l.rotation.MaxSize > 0 {
		if info, err := l.file.Stat(); err == nil && info.Size() >= l.rotation.MaxSize {
			if err := l.rotate(); err != nil {
				return fmt.Errorf("rotating run log: %w", err)
			}
		}
	}
	return l.encoder.Encode(r)
}

// Close closes the run log
func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *FileLog) rotate() error {
	if err := l.file.Close(); err != nil {
		return err
	}

	rotated := l.path + "." + time.Now().Format("20060102-150405.000000000")
	if err := os.Rename(l.path, rotated); err != nil {
		return err
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	l.file = file
	l.encoder = json.NewEncoder(file)

	if l.rotation.MaxBackups > 0 {
		l.cleanupOldFiles()
	}
	return nil
}

func (l *FileLog) cleanupOldFiles() {
	matches, err := filepath.Glob(l.path + ".*")
	if err != nil {
		return
	}
	// Rotated names sort by time.
	sort.Strings(matches)
	for len(matches) > l.rotation.MaxBackups {
		if err := os.Remove(matches[0]); err != nil {
			l.log.Debugf("removing %s: %v", matches[0], err)
		}
		matches = matches[1:]
	}
}

// Append opens the log at path, appends a record of m and closes it again.
func Append(path string, m *runner.Manager) error {
	l, err := Open(path, DefaultRotation)
	if err != nil {
		return err
	}
	defer l.Close()
	return l.Append(NewRecord(m))
}
