package steam

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"saveatlas/internal/fault"
	"saveatlas/internal/logging"
)

// Runner abstracts subprocess execution for testability.
type Runner interface {
	Run(ctx context.Context, command string, args []string) (stdout []byte, err error)
}

type commandRunner struct{}

func (commandRunner) Run(ctx context.Context, command string, args []string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("%w: %s", err, detail)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// ScriptSource fetches product info by running a helper script that
// speaks the Steam client protocol and prints JSON to stdout.
type ScriptSource struct {
	command string
	args    []string
	runner  Runner
	logger  *slog.Logger
}

var _ ProductSource = (*ScriptSource)(nil)

// ScriptOption configures a ScriptSource.
type ScriptOption func(*ScriptSource)

// WithRunner injects a custom runner (primarily for tests).
func WithRunner(runner Runner) ScriptOption {
	return func(s *ScriptSource) {
		if runner != nil {
			s.runner = runner
		}
	}
}

// NewScriptSource builds a ScriptSource invoking command with the fixed
// args followed by the batch's app ids.
func NewScriptSource(command string, args []string, logger *slog.Logger, opts ...ScriptOption) *ScriptSource {
	if logger == nil {
		logger = logging.NewNop()
	}
	out := &ScriptSource{
		command: command,
		args:    args,
		runner:  commandRunner{},
		logger:  logging.NewComponentLogger(logger, "steam"),
	}
	for _, opt := range opts {
		opt(out)
	}
	return out
}

// FetchProducts runs the helper script for one batch of app ids.
func (s *ScriptSource) FetchProducts(ctx context.Context, appIDs []uint32) (ProductInfo, error) {
	args := make([]string, 0, len(s.args)+len(appIDs))
	args = append(args, s.args...)
	for _, id := range appIDs {
		args = append(args, strconv.FormatUint(uint64(id), 10))
	}

	stdout, err := s.runner.Run(ctx, s.command, args)
	if err != nil {
		if ctx.Err() != nil {
			return ProductInfo{}, ctx.Err()
		}
		s.logger.Error("product info fetch failed", logging.Error(err))
		return ProductInfo{}, fmt.Errorf("%w: %w", fault.ErrProductInfo, err)
	}

	return decodeProductInfo(stdout, s.logger)
}
