package bridgeclient

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the bridge refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a name resolution failure
	ErrTypeDNS
	// ErrTypeHTTP indicates a non-200 status code
	ErrTypeHTTP
	// ErrTypeInvalidFormat means the bridge answered "Invalid format"
	ErrTypeInvalidFormat
	// ErrTypeNoSignal means a capture window closed without a signal
	ErrTypeNoSignal
	// ErrTypeValidation indicates input rejected before sending
	ErrTypeValidation
	// ErrTypeUnexpectedReply indicates a reply the client does not understand
	ErrTypeUnexpectedReply
)

// NetworkErrorSubtype provides more specific network error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeInvalidFormat:
		return "Invalid Format"
	case ErrTypeNoSignal:
		return "No Signal"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeUnexpectedReply:
		return "Unexpected Reply"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ClientError represents an error that occurred while talking to a bridge
type ClientError struct {
	Type           ErrorType
	Message        string
	StatusCode     int // HTTP status code, if any
	Err            error
	NetworkSubtype NetworkErrorSubtype
	Host           string
	Retryable      bool
}

// Error implements the error interface
func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ClientError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a transport error and returns a more specific
// ClientError.
func ClassifyNetworkError(err error, host string) *ClientError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &ClientError{
			Type:           ErrTypeTimeout,
			Message:        "Request timed out",
			Err:            err,
			NetworkSubtype: NetworkErrorTimeout,
			Host:           host,
			Retryable:      true,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &ClientError{
			Type:           ErrTypeDNS,
			Message:        fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:            err,
			NetworkSubtype: NetworkErrorDNS,
			Host:           host,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return &ClientError{
				Type:           ErrTypeConnectionRefused,
				Message:        "Bridge refused connection",
				Err:            err,
				NetworkSubtype: NetworkErrorConnectionRefused,
				Host:           host,
				Retryable:      true,
			}
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return &ClientError{
				Type:           ErrTypeNetwork,
				Message:        "Host unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorHostUnreachable,
				Host:           host,
				Retryable:      true,
			}
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return &ClientError{
				Type:           ErrTypeNetwork,
				Message:        "Network unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorNetworkUnreachable,
				Host:           host,
				Retryable:      true,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ClassifyNetworkError(urlErr.Err, host)
	}

	return &ClientError{
		Type:           ErrTypeNetwork,
		Message:        "Network error occurred",
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
		Host:           host,
		Retryable:      true,
	}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, err error) *ClientError {
	classified := ClassifyNetworkError(err, "")
	if classified == nil {
		return &ClientError{Type: ErrTypeNetwork, Message: message, Retryable: true}
	}
	classified.Message = message
	return classified
}

// NewHTTPError creates an HTTP-level error. 5xx and 408 are retryable.
func NewHTTPError(statusCode int, message string) *ClientError {
	return &ClientError{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  statusCode >= 500 || statusCode == http.StatusRequestTimeout,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *ClientError {
	return &ClientError{Type: ErrTypeValidation, Message: message}
}

func newReplyError(typ ErrorType, message string, err error) *ClientError {
	return &ClientError{Type: typ, Message: message, Err: err}
}

func hasType(err error, types ...ErrorType) bool {
	var ce *ClientError
	if !errors.As(err, &ce) {
		return false
	}
	for _, t := range types {
		if ce.Type == t {
			return true
		}
	}
	return false
}

// IsNetworkError checks if an error is a network error (including timeout,
// connection refused and DNS)
func IsNetworkError(err error) bool {
	return hasType(err, ErrTypeNetwork, ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS)
}

// IsHTTPError checks if an error is an HTTP error
func IsHTTPError(err error) bool {
	return hasType(err, ErrTypeHTTP)
}

// IsInvalidFormat checks if the bridge rejected the request body
func IsInvalidFormat(err error) bool {
	return hasType(err, ErrTypeInvalidFormat)
}

// IsNoSignal checks if a capture came back empty
func IsNoSignal(err error) bool {
	return hasType(err, ErrTypeNoSignal)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return hasType(err, ErrTypeValidation)
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Retryable
	}
	return false
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	var ce *ClientError
	if !errors.As(err, &ce) {
		return "An unexpected error occurred. Please try again."
	}

	switch ce.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The bridge did not respond in time.",
			"Troubleshooting:",
			"  • Check that the bridge is powered on",
			"  • A capture waits up to 10s for a signal; allow for that in the timeout",
			"  • Move the bridge closer to the access point",
		}, "\n")

	case ErrTypeConnectionRefused:
		return strings.Join([]string{
			"The bridge refused the connection.",
			"Troubleshooting:",
			"  • The bridge may be restarting after a configuration change",
			"  • In access point mode only /scan and /wificonfig are served",
			"  • Verify the port number (default is 80)",
		}, "\n")

	case ErrTypeDNS:
		return strings.Join([]string{
			"Could not resolve the bridge hostname.",
			"Troubleshooting:",
			"  • Run 'irbridge-cfg discover' to find the bridge's address",
			"  • Use the IP address instead of the hostname",
		}, "\n")

	case ErrTypeNetwork:
		hint := []string{"Network communication failed."}
		switch ce.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			hint = append(hint, "The bridge is not reachable on the network.",
				"Troubleshooting:",
				"  • Verify the bridge IP address is correct",
				"  • Check that you're on the same network as the bridge",
				"  • Try pinging the bridge: ping "+ce.Host)
		case NetworkErrorNetworkUnreachable:
			hint = append(hint, "Your computer cannot reach the bridge's network.",
				"Troubleshooting:",
				"  • For first-time setup, join the UniversalIRBlaster WiFi network",
				"  • Check your network adapter settings")
		default:
			hint = append(hint, "Troubleshooting:",
				"  • Check your network connection",
				"  • Verify the bridge is powered on")
		}
		return strings.Join(hint, "\n")

	case ErrTypeHTTP:
		if ce.StatusCode == http.StatusRequestTimeout {
			return "The bridge gave up waiting for the request body. Try again on a better connection."
		}
		if ce.StatusCode == http.StatusNotFound {
			return "The bridge does not serve this endpoint in its current mode (access point or station)."
		}
		return fmt.Sprintf("The bridge returned HTTP error %d.", ce.StatusCode)

	case ErrTypeInvalidFormat:
		return strings.Join([]string{
			"The bridge could not parse the request.",
			"Raw signals look like '<count>:<d1>,<d2>,...'.",
			"A/C commands are 18 comma separated fields.",
		}, "\n")

	case ErrTypeNoSignal:
		return "No IR signal arrived during the capture window. Point the remote at the receiver and press a button."

	case ErrTypeValidation:
		return "The values are invalid. Check the error message for details."

	default:
		return "An error occurred. Please check the error message for details."
	}
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var ce *ClientError
	if !errors.As(err, &ce) {
		return err.Error()
	}

	switch ce.Type {
	case ErrTypeTimeout:
		return "Bridge not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Bridge refused connection - is it restarting?"
	case ErrTypeDNS:
		return "Cannot resolve bridge hostname"
	case ErrTypeNetwork:
		switch ce.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			return "Bridge unreachable - check network connection"
		case NetworkErrorNetworkUnreachable:
			return "Network unreachable - check WiFi connection"
		default:
			return "Network error - check connection"
		}
	case ErrTypeHTTP:
		return fmt.Sprintf("Bridge error (HTTP %d)", ce.StatusCode)
	case ErrTypeInvalidFormat:
		return "Bridge rejected the format"
	case ErrTypeNoSignal:
		return "No IR signal captured"
	default:
		return ce.Message
	}
}
