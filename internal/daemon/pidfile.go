// Package daemon tracks the running applogs server through a PID file kept
// in the logs root, so that one root is served by one process at a time.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	apperrors "github.com/Aman-CERP/applogs/internal/errors"
)

// PIDFileName is the PID file's name inside the logs root.
const PIDFileName = "applogs.pid"

// ErrPIDFileNotFound is returned when the PID file doesn't exist.
var ErrPIDFileNotFound = errors.New("PID file not found")

// PIDFile manages the server's process ID file.
type PIDFile struct {
	path string
}

// NewPIDFile creates a PIDFile for path.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{path: path}
}

// ForRoot returns the PID file of the server using logs root.
func ForRoot(root string) *PIDFile {
	return NewPIDFile(filepath.Join(root, PIDFileName))
}

// Path returns the PID file path.
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire records the current process as the server. It fails with
// ErrCodeAlreadyRunning while another live process holds the file; a file
// left by a dead process is replaced.
func (p *PIDFile) Acquire() error {
	pid, err := p.Read()
	if err == nil && pid != os.Getpid() && processExists(pid) {
		return apperrors.New(apperrors.ErrCodeAlreadyRunning, "another applogs server is using this logs root", nil).
			WithDetail("pid", strconv.Itoa(pid)).
			WithDetail("pid_file", p.path).
			WithSuggestion("Stop it with 'applogs stop' or use a different logs.root")
	}
	return p.write()
}

func (p *PIDFile) write() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}
	if err := os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Read returns the PID stored in the file.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrPIDFileNotFound
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	return pid, nil
}

// Release removes the file if it still names the current process.
func (p *PIDFile) Release() error {
	pid, err := p.Read()
	if err != nil {
		if errors.Is(err, ErrPIDFileNotFound) {
			return nil
		}
		return err
	}
	if pid != os.Getpid() {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// Running returns the server's PID, or false when there is no file or the
// process is gone.
func (p *PIDFile) Running() (int, bool) {
	pid, err := p.Read()
	if err != nil {
		return 0, false
	}
	return pid, processExists(pid)
}

// Stop sends SIGTERM to the server and waits up to timeout for it to
// release the PID file or exit.
func (p *PIDFile) Stop(timeout time.Duration) (int, error) {
	pid, ok := p.Running()
	if !ok {
		return 0, apperrors.New(apperrors.ErrCodeNotRunning, "no applogs server is running", nil).
			WithDetail("pid_file", p.path)
	}
	if err := p.Signal(syscall.SIGTERM); err != nil {
		return pid, err
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, ok := p.Running(); !ok {
			return pid, nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return pid, apperrors.New(apperrors.ErrCodeInternal, "server did not stop in time", nil).
		WithDetail("pid", strconv.Itoa(pid)).
		WithDetail("timeout", timeout.String())
}

// Signal sends sig to the process named in the file.
func (p *PIDFile) Signal(sig syscall.Signal) error {
	pid, err := p.Read()
	if err != nil {
		return fmt.Errorf("failed to read PID: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	if err := process.Signal(sig); err != nil {
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}
	return nil
}

// processExists checks pid with signal 0; FindProcess alone always
// succeeds on Unix.
func processExists(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
