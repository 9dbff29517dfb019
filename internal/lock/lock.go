// Package lock implements the PID-based directory lock the on-disk caches
// use to serialize writes across processes without ever blocking a reader.
package lock

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

// ErrContention is returned by Acquire when the lock is held by a live
// process and the timeout elapses. Callers must treat this as "skip the
// write", never as a fatal error (§4.2: "requests must not fail on cache-lock
// contention").
var ErrContention = errors.New("lock: held by a live process")

const pollInterval = 50 * time.Millisecond

// Lock is a directory-based mutual exclusion lock keyed by a filesystem
// path. Acquisition creates the directory (an atomic, cross-process
// operation on every platform Go targets) containing a "pid" file; release
// removes it.
type Lock struct {
	dir string
}

// New returns a Lock for the given directory path. The directory need not
// exist yet.
func New(dir string) *Lock {
	return &Lock{dir: dir}
}

// Acquire attempts to create the lock directory, retrying until timeout. If
// the lock is held by a process that is no longer alive, the stale lock is
// removed and acquisition retried immediately. Release must be called to
// drop the lock.
func (l *Lock) Acquire(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		err := os.Mkdir(l.dir, 0o700)
		switch {
		case err == nil:
			return l.writePID()
		case !os.IsExist(err):
			return errors.Wrapf(err, "creating lock dir %s", l.dir)
		}
		if holder, ok := l.holderPID(); ok && !pidAlive(holder) {
			os.RemoveAll(l.dir) // stale: best-effort cleanup, retry immediately
			continue
		}
		if time.Now().After(deadline) {
			return ErrContention
		}
		time.Sleep(pollInterval)
	}
}

// Release drops the lock. It is a no-op if the lock is not held.
func (l *Lock) Release() error {
	return os.RemoveAll(l.dir)
}

func (l *Lock) writePID() error {
	return os.WriteFile(filepath.Join(l.dir, "pid"), []byte(strconv.Itoa(os.Getpid())), 0o600)
}

func (l *Lock) holderPID() (int, bool) {
	b, err := os.ReadFile(filepath.Join(l.dir, "pid"))
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, false
	}
	return pid, true
}

// pidAlive probes whether pid is a live process using signal 0, which on
// POSIX systems checks existence/permissions without affecting the target.
func pidAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
