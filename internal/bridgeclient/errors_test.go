package bridgeclient

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"testing"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyNetworkError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantType      ErrorType
		wantSubtype   NetworkErrorSubtype
		wantRetryable bool
	}{
		{
			name:          "timeout",
			err:           &url.Error{Op: "Get", URL: "http://bridge", Err: &net.OpError{Op: "dial", Net: "tcp", Err: timeoutError{}}},
			wantType:      ErrTypeTimeout,
			wantSubtype:   NetworkErrorTimeout,
			wantRetryable: true,
		},
		{
			name:          "connection refused",
			err:           &url.Error{Op: "Get", URL: "http://bridge", Err: &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}},
			wantType:      ErrTypeConnectionRefused,
			wantSubtype:   NetworkErrorConnectionRefused,
			wantRetryable: true,
		},
		{
			name:        "dns",
			err:         &net.DNSError{Err: "no such host", Name: "bridge.local", IsNotFound: true},
			wantType:    ErrTypeDNS,
			wantSubtype: NetworkErrorDNS,
		},
		{
			name:          "host unreachable",
			err:           &net.OpError{Op: "dial", Net: "tcp", Err: syscall.EHOSTUNREACH},
			wantType:      ErrTypeNetwork,
			wantSubtype:   NetworkErrorHostUnreachable,
			wantRetryable: true,
		},
		{
			name:          "network unreachable",
			err:           &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ENETUNREACH},
			wantType:      ErrTypeNetwork,
			wantSubtype:   NetworkErrorNetworkUnreachable,
			wantRetryable: true,
		},
		{
			name:          "generic",
			err:           errors.New("boom"),
			wantType:      ErrTypeNetwork,
			wantSubtype:   NetworkErrorGeneral,
			wantRetryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyNetworkError(tt.err, "192.168.1.50")
			if got.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", got.Type, tt.wantType)
			}
			if got.NetworkSubtype != tt.wantSubtype {
				t.Errorf("NetworkSubtype = %v, want %v", got.NetworkSubtype, tt.wantSubtype)
			}
			if got.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", got.Retryable, tt.wantRetryable)
			}
			if got.Host != "192.168.1.50" {
				t.Errorf("Host = %q", got.Host)
			}
		})
	}

	if ClassifyNetworkError(nil, "x") != nil {
		t.Error("ClassifyNetworkError(nil) should be nil")
	}
}

func TestNewHTTPError_Retryable(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusInternalServerError, true},
		{http.StatusRequestTimeout, true},
		{http.StatusNotFound, false},
		{http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		if got := NewHTTPError(tt.status, "x").Retryable; got != tt.want {
			t.Errorf("NewHTTPError(%d).Retryable = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestErrorPredicates_Wrapped(t *testing.T) {
	err := fmt.Errorf("capture: %w", newReplyError(ErrTypeNoSignal, "empty", nil))
	if !IsNoSignal(err) {
		t.Error("IsNoSignal() should see through wrapping")
	}
	if IsNetworkError(err) || IsRetryable(err) {
		t.Error("no-signal error misclassified")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain errors should not be retryable")
	}
}

func TestClientError_Error(t *testing.T) {
	cause := errors.New("reset by peer")
	err := &ClientError{Type: ErrTypeNetwork, Message: "GET / failed", Err: cause}
	if got := err.Error(); got != "Network Error: GET / failed (caused by: reset by peer)" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap() lost the cause")
	}
	if got := NewValidationError("bad").Error(); got != "Validation Error: bad" {
		t.Errorf("Error() = %q", got)
	}
}

func TestGetTroubleshootingHint(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ClientError{Type: ErrTypeTimeout}, "did not respond"},
		{&ClientError{Type: ErrTypeConnectionRefused}, "refused"},
		{&ClientError{Type: ErrTypeDNS}, "irbridge-cfg discover"},
		{&ClientError{Type: ErrTypeNetwork, NetworkSubtype: NetworkErrorHostUnreachable, Host: "10.0.0.9"}, "ping 10.0.0.9"},
		{&ClientError{Type: ErrTypeNetwork, NetworkSubtype: NetworkErrorNetworkUnreachable}, "UniversalIRBlaster"},
		{&ClientError{Type: ErrTypeHTTP, StatusCode: http.StatusNotFound}, "current mode"},
		{&ClientError{Type: ErrTypeInvalidFormat}, "<count>"},
		{&ClientError{Type: ErrTypeNoSignal}, "Point the remote"},
		{errors.New("other"), "unexpected"},
	}
	for _, tt := range tests {
		if got := GetTroubleshootingHint(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("GetTroubleshootingHint(%v) = %q, want it to contain %q", tt.err, got, tt.want)
		}
	}
}

func TestGetShortErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ClientError{Type: ErrTypeTimeout}, "Bridge not responding (timeout)"},
		{&ClientError{Type: ErrTypeHTTP, StatusCode: 500}, "Bridge error (HTTP 500)"},
		{&ClientError{Type: ErrTypeNoSignal}, "No IR signal captured"},
		{&ClientError{Type: ErrTypeValidation, Message: "SSID too long"}, "SSID too long"},
		{errors.New("plain"), "plain"},
	}
	for _, tt := range tests {
		if got := GetShortErrorMessage(tt.err); got != tt.want {
			t.Errorf("GetShortErrorMessage() = %q, want %q", got, tt.want)
		}
	}
}
