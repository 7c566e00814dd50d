package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lucidpix/mediacodec/config"
)

type contextKey int

const appStateKey contextKey = iota

// appState carries the resolved configuration and logger every
// subcommand reads, built once in the root command's
// PersistentPreRunE and threaded through cobra's command context.
type appState struct {
	cfg    config.Config
	logger zerolog.Logger
}

func withAppState(ctx context.Context, cfg config.Config, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, appStateKey, appState{cfg: cfg, logger: logger})
}

func stateFrom(ctx context.Context) appState {
	if s, ok := ctx.Value(appStateKey).(appState); ok {
		return s
	}
	cfg := config.Defaults()
	return appState{cfg: cfg, logger: zerolog.Nop()}
}
