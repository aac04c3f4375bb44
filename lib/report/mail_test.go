package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestNewMailerDisabled(t *testing.T) {
	_, err := NewMailer(MailerConfig{})
	require.ErrorIs(t, err, ErrMailDisabled)
	_, err = NewMailer(MailerConfig{Server: "localhost"})
	require.ErrorIs(t, err, ErrMailDisabled)
}

func TestSubject(t *testing.T) {
	require.Equal(t, "[FAIL] nightly: 1 passed, 1 failed, 1 skipped", subject("nightly", Summarize(sample())))
	require.Equal(t, "[PASS] nightly: 0 passed, 0 failed, 0 skipped", subject("nightly", Summary{}))
}

// fakeSmtp starts a mail catcher, skipping the test when docker is not
// available.
func fakeSmtp(t *testing.T) (host string, smtpPort, httpPort int) {
	t.Helper()
	if testing.Short() {
		t.Skip("needs docker")
	}
	testcontainers.Logger = log.New(io.Discard, "", 0)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "haravich/fake-smtp-server",
			ExposedPorts: []string{"1025/tcp", "1080/tcp"},
			WaitingFor:   wait.ForLog("smtp://0.0.0.0:1025"),
		},
	})
	if err != nil {
		t.Skipf("docker is not available: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate smtp container: %v", err)
		}
	})

	host, err = container.Host(ctx)
	require.NoError(t, err)
	mappedSmtp, err := container.MappedPort(ctx, "1025/tcp")
	require.NoError(t, err)
	mappedHttp, err := container.MappedPort(ctx, "1080/tcp")
	require.NoError(t, err)
	return host, mappedSmtp.Int(), mappedHttp.Int()
}

func TestMailerSend(t *testing.T) {
	host, smtpPort, httpPort := fakeSmtp(t)

	r := New()
	for _, res := range sample() {
		r.Add(res)
	}
	dir := t.TempDir()
	htmlPath, err := r.WriteHTML(dir)
	require.NoError(t, err)
	jsonPath, err := r.WriteJSON(dir)
	require.NoError(t, err)

	mailer, err := NewMailer(MailerConfig{
		Server:   host,
		Port:     smtpPort,
		From:     "e2e@example.com",
		Password: "default",
		To:       []string{"qa@example.com"},
	})
	require.NoError(t, err)
	require.NoError(t, mailer.Send(context.Background(), r, htmlPath, jsonPath))

	client := resty.New().SetBaseURL(fmt.Sprintf("http://%s:%d", host, httpPort))
	res, err := client.R().Get("/messages")
	require.NoError(t, err)
	var messages []struct {
		ID      int    `json:"id"`
		Subject string `json:"subject"`
	}
	require.NoError(t, json.Unmarshal(res.Body(), &messages))
	require.Len(t, messages, 1)
	require.Equal(t, "[FAIL] storefront-e2e: 1 passed, 1 failed, 1 skipped", messages[0].Subject)

	res, err = client.R().Get(fmt.Sprintf("/messages/%d.plain", messages[0].ID))
	require.NoError(t, err)
	require.Contains(t, res.String(), "TEST RESULTS SUMMARY")
}
