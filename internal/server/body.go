package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
)

var (
	// ErrTransportTimeout means the request body did not arrive before the
	// read deadline.
	ErrTransportTimeout = errors.New("request body read timed out")

	// ErrEmptyBody means the client sent no body at all.
	ErrEmptyBody = errors.New("empty request body")
)

// OversizePolicy decides what happens to a body longer than the buffer.
type OversizePolicy string

const (
	PolicyTruncate OversizePolicy = "truncate"
	PolicyReject   OversizePolicy = "reject"
)

// ParseOversizePolicy validates a policy name from configuration.
func ParseOversizePolicy(s string) (OversizePolicy, error) {
	switch p := OversizePolicy(s); p {
	case PolicyTruncate, PolicyReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown oversize policy %q (want %q or %q)", s, PolicyTruncate, PolicyReject)
	}
}

// maxDiscard bounds how much of an oversize body is drained before giving up
// and letting the connection close.
const maxDiscard = 64 << 10

// readBody reads at most limit bytes of body. truncated reports whether more
// bytes followed; they are discarded.
func readBody(body io.Reader, limit int) (text string, truncated bool, err error) {
	buf := make([]byte, limit)
	n, err := io.ReadFull(body, buf)
	switch {
	case err == nil:
		extra, derr := io.CopyN(io.Discard, body, maxDiscard)
		if derr != nil && !errors.Is(derr, io.EOF) {
			return "", false, classifyReadError(derr)
		}
		truncated = extra > 0
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
	default:
		return "", false, classifyReadError(err)
	}

	if n == 0 {
		return "", false, ErrEmptyBody
	}
	return string(buf[:n]), truncated, nil
}

func classifyReadError(err error) error {
	var netErr net.Error
	if errors.Is(err, os.ErrDeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTransportTimeout, err)
	}
	return fmt.Errorf("read body: %w", err)
}
