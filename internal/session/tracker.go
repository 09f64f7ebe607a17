// Package session tracks which environment the current run believes is active.
package session

import (
	"context"

	"go.uber.org/zap"
)

// Activator performs shell-level activation.
type Activator interface {
	ActivateEnvironment(ctx context.Context, name string) error
	DeactivateEnvironment(ctx context.Context) error
}

// Tracker holds the active environment for one controller. The tracked name
// and the real shell state may diverge when the backend fails.
type Tracker struct {
	backend Activator
	log     *zap.Logger
	active  string
	set     bool
}

func NewTracker(backend Activator, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{backend: backend, log: logger}
}

// Activate records name as active and asks the backend to activate it. The
// name is recorded even when the backend fails; that error is returned for
// reporting.
func (t *Tracker) Activate(ctx context.Context, name string) error {
	t.active, t.set = name, true
	if err := t.backend.ActivateEnvironment(ctx, name); err != nil {
		t.log.Warn("shell activation failed", zap.String("env", name), zap.Error(err))
		return err
	}
	t.log.Info("activated environment", zap.String("env", name))
	return nil
}

// Deactivate clears the tracked environment. It reports false, without
// touching the backend, when nothing is tracked.
func (t *Tracker) Deactivate(ctx context.Context) (bool, error) {
	if !t.set {
		return false, nil
	}
	name := t.active
	t.active, t.set = "", false
	if err := t.backend.DeactivateEnvironment(ctx); err != nil {
		t.log.Warn("shell deactivation failed", zap.String("env", name), zap.Error(err))
		return true, err
	}
	t.log.Info("deactivated environment", zap.String("env", name))
	return true, nil
}

func (t *Tracker) Active() (string, bool) {
	return t.active, t.set
}
