// Package session authenticates once before a run, persists the browser
// storage state for every scenario to reuse and logs out once at the end.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"storefront-e2e/lib/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("e2e.lib.session")

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	// returned by Bootstrap, the run must not continue
	ErrBootstrap = errors.New("session bootstrap failed")
	// the storage state artifact is written once per run
	ErrArtifactWritten = errors.New("session artifact already written")
)

type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
	TearingDown
	Closed
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case TearingDown:
		return "tearing down"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

func (s State) canTransitionTo(next State) bool {
	switch s {
	case Unauthenticated:
		return next == Authenticating
	case Authenticating:
		return next == Authenticated || next == Closed
	case Authenticated:
		return next == TearingDown
	case TearingDown:
		return next == Closed
	default:
		return false
	}
}

// Authenticator performs the concrete login and logout against the target.
type Authenticator interface {
	Login(ctx context.Context) error
	VerifyLogin(ctx context.Context) error
	// SaveState writes the authenticated storage state to path.
	SaveState(ctx context.Context, path string) error
	Logout(ctx context.Context) error
	VerifyLogout(ctx context.Context) error
}

type Manager struct {
	auth         Authenticator
	log          *telemetry.Log
	artifactPath string

	mu      sync.Mutex
	state   State
	written bool
}

func NewManager(auth Authenticator, artifactPath string, log *telemetry.Log) *Manager {
	return &Manager{
		auth:         auth,
		log:          log,
		artifactPath: artifactPath,
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) transition(next State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.canTransitionTo(next) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, m.state, next)
	}
	m.state = next
	return nil
}

// ArtifactPath is the storage state scenarios load, it is only valid once
// Bootstrap succeeded.
func (m *Manager) ArtifactPath() string {
	return m.artifactPath
}

// Bootstrap logs in, verifies the login and writes the storage state. Every
// failure wraps ErrBootstrap.
func (m *Manager) Bootstrap(ctx context.Context) (err error) {
	ctx, span := tracer.Start(ctx, "Bootstrap")
	defer span.End()

	err = m.transition(Authenticating)
	if err != nil {
		return err
	}
	defer func() {
		if err == nil {
			return
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "bootstrap failed")
		m.log.Error("session bootstrap failed", "err", err)
		// a failed bootstrap closes the session, there is nothing to log out of
		_ = m.transition(Closed)
		err = fmt.Errorf("%w: %w", ErrBootstrap, err)
	}()

	m.log.Info("global setup: logging in")
	err = m.auth.Login(ctx)
	if err != nil {
		return err
	}
	err = m.auth.VerifyLogin(ctx)
	if err != nil {
		return err
	}
	err = m.writeArtifact(ctx)
	if err != nil {
		return err
	}

	err = m.transition(Authenticated)
	if err != nil {
		return err
	}
	m.log.Info("global setup: session stored", "path", m.artifactPath)
	return nil
}

func (m *Manager) writeArtifact(ctx context.Context) error {
	m.mu.Lock()
	if m.written {
		m.mu.Unlock()
		return ErrArtifactWritten
	}
	m.written = true
	m.mu.Unlock()

	err := os.MkdirAll(filepath.Dir(m.artifactPath), 0777)
	if err != nil {
		return err
	}
	return m.auth.SaveState(ctx, m.artifactPath)
}

// Teardown logs out once. Its error is reported but never changes the
// outcome of scenarios that already ran.
func (m *Manager) Teardown(ctx context.Context) (err error) {
	ctx, span := tracer.Start(ctx, "Teardown")
	defer span.End()

	err = m.transition(TearingDown)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := m.transition(Closed)
		if err == nil {
			err = closeErr
		}
	}()

	m.log.Info("global teardown: logging out")
	err = m.auth.Logout(ctx)
	if err == nil {
		err = m.auth.VerifyLogout(ctx)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "teardown failed")
		m.log.Error("session teardown failed", "err", err)
		return err
	}
	m.log.Info("global teardown: logged out")
	return nil
}

// Run bootstraps, calls fn and always tears down a bootstrapped session.
// The returned code is fn's unless bootstrap failed.
func Run(ctx context.Context, m *Manager, fn func() int) (int, error) {
	err := m.Bootstrap(ctx)
	if err != nil {
		return 1, err
	}
	code := fn()
	return code, m.Teardown(ctx)
}
