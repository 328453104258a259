package bridgeclient

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/credstore"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/deviceconfig"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/protocol"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/version"
)

const (
	// DefaultAPAddress is the bridge's address on its own access point.
	DefaultAPAddress = "192.168.1.1"

	// DefaultPort is the bridge's HTTP port.
	DefaultPort = 80

	// DefaultTimeout leaves room for the bridge's 10s capture window.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 1 * time.Second

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 30 * time.Second

	// maxReplyBytes caps how much of a reply is read.
	maxReplyBytes = 64 << 10
)

// Endpoint paths served by the bridge.
const (
	PathRoot       = "/"
	PathAC         = "/ac"
	PathScan       = "/scan"
	PathWiFiConfig = "/wificonfig"
	PathStream     = "/capture/stream"
)

// Client represents an HTTP client for one bridge
type Client struct {
	// BaseURL is the base URL for the bridge (e.g., "http://192.168.1.50:80")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for read-only requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	UseExponentialBackoff bool
}

// NewClient creates a client for the bridge at host:port
func NewClient(host string, port int) *Client {
	return NewClientWithURL("http://" + net.JoinHostPort(host, strconv.Itoa(port)))
}

// NewClientWithURL creates a new client with a full base URL
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		BaseURL:               strings.TrimRight(baseURL, "/"),
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

func (c *Client) host() string {
	h := strings.TrimPrefix(strings.TrimPrefix(c.BaseURL, "http://"), "https://")
	if host, _, err := net.SplitHostPort(h); err == nil {
		return host
	}
	return h
}

// withRetry runs attempt until it succeeds, returns a non-retryable error or
// MaxRetries is exhausted.
func (c *Client) withRetry(ctx context.Context, attempt func() error) error {
	var lastErr error
	delay := c.RetryDelay

	for i := 0; i <= c.MaxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(delay):
			}
			if c.UseExponentialBackoff {
				delay *= 2
				if delay > c.MaxRetryDelay {
					delay = c.MaxRetryDelay
				}
			}
		}

		err := attempt()
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return err
		}
	}
	return lastErr
}

// do sends one request and returns the trimmed reply body.
func (c *Client) do(ctx context.Context, method, path, body string) (string, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return "", NewNetworkError("failed to create request", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if body != "" {
		req.Header.Set("Content-Type", "text/plain")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		ce := ClassifyNetworkError(err, c.host())
		ce.Message = fmt.Sprintf("%s %s failed", method, path)
		return "", ce
	}
	defer func() { _ = resp.Body.Close() }()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", NewNetworkError("failed to read reply", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", NewHTTPError(resp.StatusCode, fmt.Sprintf("%s %s returned status %d", method, path, resp.StatusCode))
	}
	return strings.TrimSpace(string(reply)), nil
}

// Capture asks the bridge to record the next IR signal. A capture window
// that closes empty returns an ErrTypeNoSignal error.
func (c *Client) Capture(ctx context.Context) (protocol.CapturedSignal, error) {
	var sig protocol.CapturedSignal
	err := c.withRetry(ctx, func() error {
		reply, err := c.do(ctx, http.MethodGet, PathRoot, "")
		if err != nil {
			return err
		}
		sig, err = parseCapture(reply)
		return err
	})
	return sig, err
}

func parseCapture(reply string) (protocol.CapturedSignal, error) {
	if reply == protocol.ReplyNoSignal {
		return protocol.CapturedSignal{}, newReplyError(ErrTypeNoSignal, "capture window closed without a signal", nil)
	}
	sig, err := protocol.DecodeRaw(reply)
	if err != nil {
		return sig, newReplyError(ErrTypeUnexpectedReply, "bridge returned an unreadable capture", err)
	}
	return sig, nil
}

// SendRaw replays a raw signal in "<count>:<d1>,<d2>,..." form. The text is
// checked locally first so obvious mistakes never reach the transmitter.
func (c *Client) SendRaw(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if _, err := protocol.DecodeRaw(text); err != nil {
		return &ClientError{Type: ErrTypeValidation, Message: "not a raw signal", Err: err}
	}
	return c.post(ctx, PathRoot, text, protocol.ReplySuccess)
}

// SendAC transmits a structured air conditioner command.
func (c *Client) SendAC(ctx context.Context, cmd protocol.ACCommand) error {
	return c.post(ctx, PathAC, protocol.EncodeAC(cmd), protocol.ReplySuccess)
}

// Networks lists the SSIDs the bridge can see.
func (c *Client) Networks(ctx context.Context) ([]string, error) {
	var ssids []string
	err := c.withRetry(ctx, func() error {
		reply, err := c.do(ctx, http.MethodGet, PathScan, "")
		if err != nil {
			return err
		}
		ssids = deviceconfig.SplitNetworkList(reply)
		return nil
	})
	return ssids, err
}

// Configure sends WiFi credentials to a bridge in access point mode. The
// credentials are validated first; all problems are reported together.
func (c *Client) Configure(ctx context.Context, creds credstore.Credentials) error {
	if errs := ValidateCredentials(creds); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.(*ClientError).Message
		}
		return NewValidationError(strings.Join(msgs, "; "))
	}
	return c.post(ctx, PathWiFiConfig, deviceconfig.FormatConfigurePayload(creds), protocol.ReplyGotRequest)
}

func (c *Client) post(ctx context.Context, path, body, want string) error {
	reply, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	switch reply {
	case want:
		return nil
	case protocol.ReplyInvalidFormat:
		return newReplyError(ErrTypeInvalidFormat, fmt.Sprintf("bridge rejected %s body", path), nil)
	default:
		return newReplyError(ErrTypeUnexpectedReply, fmt.Sprintf("unexpected reply %q", reply), nil)
	}
}
