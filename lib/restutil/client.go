// Package restutil wraps resty with the request logging and instrumentation
// every api test uses.
package restutil

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storefront-e2e/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("e2e.lib.restutil")

type Options struct {
	BaseUrl string
	Timeout time.Duration
	// wraps the transport so requests look like they come from a browser
	CloudflareBypass bool
	// when set, full request/response dumps are written here on debug
	DumpDir string
}

// Client sends requests and logs them the same way for every api test.
type Client struct {
	Http *resty.Client
	log  *telemetry.Log
}

func NewClient(log *telemetry.Log, opts Options) (*Client, error) {
	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	client.SetTimeout(opts.Timeout)
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	var output InstrumentOutput
	if opts.DumpDir != "" {
		fsOutput, err := NewFilesystemOutput(opts.DumpDir)
		if err != nil {
			return nil, err
		}
		output = fsOutput
	}
	InstrumentClient(client, log.Logger, tracer, output)

	return &Client{Http: client, log: log}, nil
}

type Request struct {
	Url         string
	Description string
	Headers     map[string]string
	Body        any
}

func (c *Client) do(ctx context.Context, method string, req Request) (*resty.Response, error) {
	c.log.Info(fmt.Sprintf("Sending %s request for %s", method, req.Description))

	r := c.Http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeaders(req.Headers)
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	res, err := r.Execute(method, req.Url)
	if err != nil {
		c.log.Error(fmt.Sprintf("Error while sending %s request for %s", method, req.Description), "err", err)
		return nil, fmt.Errorf("%s %s: %w", method, req.Description, err)
	}
	c.log.Info(fmt.Sprintf("Received response with status code %d", res.StatusCode()))
	return res, nil
}

func (c *Client) Get(ctx context.Context, req Request) (*resty.Response, error) {
	return c.do(ctx, http.MethodGet, req)
}

func (c *Client) Post(ctx context.Context, req Request) (*resty.Response, error) {
	return c.do(ctx, http.MethodPost, req)
}

func (c *Client) Put(ctx context.Context, req Request) (*resty.Response, error) {
	return c.do(ctx, http.MethodPut, req)
}

func (c *Client) Delete(ctx context.Context, req Request) (*resty.Response, error) {
	return c.do(ctx, http.MethodDelete, req)
}

func (c *Client) Patch(ctx context.Context, req Request) (*resty.Response, error) {
	return c.do(ctx, http.MethodPatch, req)
}

// BearerAuth is a header map for token authenticated requests.
func BearerAuth(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
