package launch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"
)

// ExecRunner starts the game as an OS process. By default the process is
// started and released; with Wait set it is supervised until exit, which lets
// the launcher record session play time.
type ExecRunner struct {
	// Wait blocks until the game process exits.
	Wait bool

	log *zap.SugaredLogger
}

// NewExecRunner creates a process-based runner. A nil logger disables logging.
func NewExecRunner(log *zap.SugaredLogger) *ExecRunner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ExecRunner{log: log}
}

// StartModded starts the game with the loader injected via doorstop
// environment variables. The context only covers the start, not the process
// lifetime.
func (r *ExecRunner) StartModded(ctx context.Context, spec ModdedSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := exec.Command(spec.GameExe)
	cmd.Dir = filepath.Dir(spec.GameExe)
	cmd.Env = append(os.Environ(),
		"DOORSTOP_ENABLED=1",
		"DOORSTOP_TARGET_ASSEMBLY="+spec.LoaderPath,
		"DOORSTOP_CLR_RUNTIME_CORECLR_PATH="+spec.CoreCLRPath,
		"DOORSTOP_CLR_CORLIB_DIR="+spec.DotnetDir,
	)

	return r.start(cmd)
}

// StartVanilla starts the game without any loader environment.
func (r *ExecRunner) StartVanilla(ctx context.Context, gameExe string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := exec.Command(gameExe)
	cmd.Dir = filepath.Dir(gameExe)

	return r.start(cmd)
}

func (r *ExecRunner) start(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting process: %w", err)
	}

	r.log.Debugw("started game process", "pid", cmd.Process.Pid, "path", cmd.Path)

	if r.Wait {
		if err := cmd.Wait(); err != nil {
			return fmt.Errorf("game process: %w", err)
		}
		return nil
	}

	// The game keeps running after nova exits.
	return cmd.Process.Release()
}
