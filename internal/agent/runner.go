package agent

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/jonesrussell/godigest/internal/logger"
)

// Runner invokes the external curation agent as a subprocess. The agent
// is a black box: it reads the prepared CSV input from its working
// directory and writes selections.json.
type Runner struct {
	argv []string
	log  logger.Logger
}

// NewRunner creates a Runner from the configured command line.
func NewRunner(argv []string, log logger.Logger) *Runner {
	return &Runner{argv: argv, log: log}
}

// Run executes the agent and streams its combined output to the log.
// Returns an error on non-zero exit.
func (r *Runner) Run(ctx context.Context) error {
	if len(r.argv) == 0 {
		return fmt.Errorf("agent command is empty")
	}

	cmd := exec.CommandContext(ctx, r.argv[0], r.argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("attach agent stdout: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	r.log.Info("running curation agent", logger.Strings("command", r.argv))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start agent: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		r.log.Info("agent output", logger.String("line", scanner.Text()))
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("agent failed: %w", err)
	}
	return nil
}

// ReadSelections reads the agent's selections.json output.
func ReadSelections(path string) ([]byte, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read selections output: %w", err)
	}
	return buf, nil
}
