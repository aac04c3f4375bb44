package session

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"storefront-e2e/lib/telemetry"

	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	loginErr        error
	verifyLoginErr  error
	logoutErr       error
	verifyLogoutErr error

	calls  []string
	writes int
}

func (f *fakeAuth) Login(context.Context) error {
	f.calls = append(f.calls, "login")
	return f.loginErr
}

func (f *fakeAuth) VerifyLogin(context.Context) error {
	f.calls = append(f.calls, "verify-login")
	return f.verifyLoginErr
}

func (f *fakeAuth) SaveState(_ context.Context, path string) error {
	f.calls = append(f.calls, "save")
	f.writes++
	return os.WriteFile(path, []byte(`{"cookies":[],"origins":[]}`), 0600)
}

func (f *fakeAuth) Logout(context.Context) error {
	f.calls = append(f.calls, "logout")
	return f.logoutErr
}

func (f *fakeAuth) VerifyLogout(context.Context) error {
	f.calls = append(f.calls, "verify-logout")
	return f.verifyLogoutErr
}

func newManager(t *testing.T, auth *fakeAuth) (*Manager, *bytes.Buffer) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "results", "state.json")
	return NewManager(auth, path, telemetry.NewTestLog(&buf)), &buf
}

func TestLifecycle(t *testing.T) {
	auth := &fakeAuth{}
	m, _ := newManager(t, auth)
	ctx := context.Background()

	require.Equal(t, Unauthenticated, m.State())
	require.NoError(t, m.Bootstrap(ctx))
	require.Equal(t, Authenticated, m.State())
	require.FileExists(t, m.ArtifactPath())

	require.NoError(t, m.Teardown(ctx))
	require.Equal(t, Closed, m.State())
	require.Equal(t, []string{"login", "verify-login", "save", "logout", "verify-logout"}, auth.calls)
	require.Equal(t, 1, auth.writes)
}

func TestBootstrapTwice(t *testing.T) {
	auth := &fakeAuth{}
	m, _ := newManager(t, auth)
	ctx := context.Background()

	require.NoError(t, m.Bootstrap(ctx))
	err := m.Bootstrap(ctx)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, 1, auth.writes)
	require.Equal(t, Authenticated, m.State())
}

func TestArtifactWrittenOnce(t *testing.T) {
	auth := &fakeAuth{}
	m, _ := newManager(t, auth)
	require.NoError(t, m.writeArtifact(context.Background()))
	require.ErrorIs(t, m.writeArtifact(context.Background()), ErrArtifactWritten)
	require.Equal(t, 1, auth.writes)
}

func TestBootstrapFailures(t *testing.T) {
	loginErr := errors.New("element not found: #loginFrm_loginname")
	titleErr := errors.New(`expected page title "My Account", got "Account Login"`)

	cases := []struct {
		name      string
		auth      *fakeAuth
		wantErr   error
		wantCalls []string
	}{
		{
			name:      "login fails",
			auth:      &fakeAuth{loginErr: loginErr},
			wantErr:   loginErr,
			wantCalls: []string{"login"},
		},
		{
			name:      "title mismatch",
			auth:      &fakeAuth{verifyLoginErr: titleErr},
			wantErr:   titleErr,
			wantCalls: []string{"login", "verify-login"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, buf := newManager(t, tc.auth)
			err := m.Bootstrap(context.Background())
			require.ErrorIs(t, err, ErrBootstrap)
			require.ErrorIs(t, err, tc.wantErr)
			require.Equal(t, Closed, m.State())
			require.Equal(t, tc.wantCalls, tc.auth.calls)
			require.NoFileExists(t, m.ArtifactPath())
			require.Contains(t, buf.String(), "session bootstrap failed")

			// nothing to tear down after a failed bootstrap
			require.ErrorIs(t, m.Teardown(context.Background()), ErrInvalidTransition)
		})
	}
}

func TestTeardownFailure(t *testing.T) {
	auth := &fakeAuth{verifyLogoutErr: errors.New("logout label not visible")}
	m, buf := newManager(t, auth)
	ctx := context.Background()

	require.NoError(t, m.Bootstrap(ctx))
	err := m.Teardown(ctx)
	require.ErrorContains(t, err, "logout label not visible")
	require.Equal(t, Closed, m.State())
	require.Contains(t, buf.String(), "session teardown failed")
}

func TestTeardownBeforeBootstrap(t *testing.T) {
	m, _ := newManager(t, &fakeAuth{})
	require.ErrorIs(t, m.Teardown(context.Background()), ErrInvalidTransition)
}

func TestRun(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		auth := &fakeAuth{}
		m, _ := newManager(t, auth)
		ran := false
		code, err := Run(context.Background(), m, func() int {
			ran = true
			require.Equal(t, Authenticated, m.State())
			return 3
		})
		require.NoError(t, err)
		require.True(t, ran)
		require.Equal(t, 3, code)
		require.Equal(t, Closed, m.State())
	})

	t.Run("bootstrap failure skips the run", func(t *testing.T) {
		m, _ := newManager(t, &fakeAuth{loginErr: errors.New("timeout")})
		ran := false
		code, err := Run(context.Background(), m, func() int {
			ran = true
			return 0
		})
		require.ErrorIs(t, err, ErrBootstrap)
		require.False(t, ran)
		require.Equal(t, 1, code)
	})
}
