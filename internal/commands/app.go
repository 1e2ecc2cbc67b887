package commands

import (
	"context"
	"io"
	"sync"

	"lexify/internal/backend"
	"lexify/internal/cli"
	"lexify/internal/state"
)

// App is the backend shared by all commands of one invocation. When Backend
// is nil it is built from the environment before the first command runs.
type App struct {
	Backend *backend.Backend

	cleanup backend.CleanupFunc
	once    sync.Once
}

func (a *App) open(ctx context.Context, logOut io.Writer) error {
	if a.Backend != nil {
		return nil
	}
	if err := cli.LoadEnvFile(); err != nil {
		return err
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger, err := cli.SetupLogger(cfg.LogLevel, logOut)
	if err != nil {
		return err
	}
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return err
	}
	a.Backend = res.Backend
	a.cleanup = res.Cleanup
	return nil
}

// Close releases what open acquired. A backend supplied by the caller is
// left open.
func (a *App) Close() error {
	var err error
	a.once.Do(func() {
		if a.cleanup != nil {
			err = a.cleanup()
		}
	})
	return err
}

func (a *App) deps() state.Deps {
	return a.Backend.StateDeps()
}

// await runs an asynchronous state action and waits for its outcome.
func await(start func(done func(error)) error) error {
	result := make(chan error, 1)
	if err := start(func(err error) { result <- err }); err != nil {
		return err
	}
	return <-result
}
