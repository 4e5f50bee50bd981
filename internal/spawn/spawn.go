// Package spawn launches external programs on behalf of keybindings. Spawns
// are fire-and-forget: the manager neither waits for nor tracks the child;
// any window it opens arrives later as an ordinary map request.
package spawn

import (
	"log/slog"
	"os/exec"
)

// Spawner runs shell commands detached from the manager process.
type Spawner struct {
	log *slog.Logger
}

// New creates a spawner logging through logger.
func New(logger *slog.Logger) *Spawner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Spawner{log: logger}
}

// Spawn starts command through the shell. A background goroutine reaps the
// child on exit so it never lingers as a zombie; nothing else about its
// lifetime is observed.
func (s *Spawner) Spawn(command string) {
	cmd := exec.Command("sh", "-c", command)
	if err := cmd.Start(); err != nil {
		s.log.Error("spawn failed", "command", command, "err", err)
		return
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			s.log.Debug("spawned command exited", "command", command, "err", err)
		}
	}()
}
