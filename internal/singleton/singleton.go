// Package singleton ensures only one bot process runs per bot credential.
// The guard is an exclusive lock on a file named after the bot id; the
// operating system drops it when the process exits.
package singleton

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	filePerm = 0o644
	dirPerm  = 0o755
)

var (
	// ErrAlreadyRunning means another process holds the lock.
	ErrAlreadyRunning = errors.New("another bot instance is already running")
	// ErrLockUnavailable means the lock file could not be opened or locked.
	ErrLockUnavailable = errors.New("lock unavailable")
)

// Guard holds the process lock until Release is called or the process exits.
type Guard struct {
	file *os.File
	path string
}

// LockPath returns the lock file for the bot identified by token. Only the
// numeric bot id in front of the colon is used, never the secret part.
func LockPath(dir, token string) string {
	id, _, _ := strings.Cut(token, ":")
	id = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, id)
	if id == "" {
		id = "default"
	}
	return filepath.Join(dir, "codexbot-"+id+".lock")
}

// Acquire takes the exclusive lock at path without blocking.
func Acquire(path string) (*Guard, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty lock path", ErrLockUnavailable)
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("%w: create lock dir: %v", ErrLockUnavailable, err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, filePerm)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrLockUnavailable, path, err)
	}

	if err := lockFile(file); err != nil {
		holder := readHolder(file)
		_ = file.Close()
		if errors.Is(err, ErrAlreadyRunning) && holder != "" {
			return nil, fmt.Errorf("%w (held by %s)", err, holder)
		}
		return nil, err
	}

	writeMetadata(file, path)
	return &Guard{file: file, path: path}, nil
}

// Path returns the lock file path.
func (g *Guard) Path() string {
	return g.path
}

// Release unlocks and closes the lock file. The file itself is left in place.
func (g *Guard) Release() error {
	if g == nil || g.file == nil {
		return nil
	}
	unlockFile(g.file)
	err := g.file.Close()
	g.file = nil
	return err
}

type metadata struct {
	PID        int    `json:"pid"`
	Hostname   string `json:"hostname"`
	LockPath   string `json:"lock_path"`
	AcquiredAt string `json:"acquired_at"`
}

func writeMetadata(file *os.File, path string) {
	host, _ := os.Hostname()
	data, err := json.Marshal(metadata{
		PID:        os.Getpid(),
		Hostname:   host,
		LockPath:   path,
		AcquiredAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return
	}
	data = append(data, '\n')
	_ = file.Truncate(0)
	_, _ = file.Seek(0, 0)
	_, _ = file.Write(data)
	_ = file.Sync()
}

func readHolder(file *os.File) string {
	if _, err := file.Seek(0, 0); err != nil {
		return ""
	}
	var m metadata
	if err := json.NewDecoder(file).Decode(&m); err != nil || m.PID == 0 {
		return ""
	}
	return fmt.Sprintf("pid %d on %s", m.PID, m.Hostname)
}
