package bridgeclient

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/credstore"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/deviceconfig"
)

const (
	// MaxHostnameLength is the longest instance name a single DNS label holds.
	MaxHostnameLength = 63

	MaxSSIDLength     = 32
	MinPasswordLength = 8
	MaxPasswordLength = 63
)

// ValidateSSID validates a WiFi SSID.
// SSIDs must be non-empty and <= 32 bytes, and cannot contain the payload
// separator.
func ValidateSSID(ssid string) error {
	if ssid == "" {
		return NewValidationError("WiFi SSID cannot be empty")
	}
	if len(ssid) > MaxSSIDLength {
		return NewValidationError(fmt.Sprintf("WiFi SSID too long (max %d bytes): %d bytes", MaxSSIDLength, len(ssid)))
	}
	if strings.Contains(ssid, deviceconfig.PayloadSeparator) {
		return NewValidationError("WiFi SSID cannot contain '$'")
	}
	return nil
}

// ValidatePassword validates a WiFi password. Empty joins an open network;
// otherwise WPA2 requires 8-63 characters.
func ValidatePassword(password string) error {
	if password == "" {
		return nil
	}
	if len(password) < MinPasswordLength {
		return NewValidationError(fmt.Sprintf("WiFi password too short (min %d chars): %d chars", MinPasswordLength, len(password)))
	}
	if len(password) > MaxPasswordLength {
		return NewValidationError(fmt.Sprintf("WiFi password too long (max %d chars): %d chars", MaxPasswordLength, len(password)))
	}
	if strings.Contains(password, deviceconfig.PayloadSeparator) {
		return NewValidationError("WiFi password cannot contain '$'")
	}
	return nil
}

// ValidateHostname validates the name the bridge announces itself under.
// Spaces are allowed, as in any DNS-SD instance name.
func ValidateHostname(hostname string) error {
	if strings.TrimSpace(hostname) == "" {
		return NewValidationError("hostname cannot be empty")
	}
	if len(hostname) > MaxHostnameLength {
		return NewValidationError(fmt.Sprintf("hostname too long (max %d bytes): %d bytes", MaxHostnameLength, len(hostname)))
	}
	if strings.Contains(hostname, deviceconfig.PayloadSeparator) {
		return NewValidationError("hostname cannot contain '$'")
	}
	if strings.IndexFunc(hostname, unicode.IsControl) >= 0 {
		return NewValidationError("hostname contains control characters")
	}
	return nil
}

// ValidateCredentials validates everything sent by Configure.
// Returns a slice of validation errors (empty if valid).
func ValidateCredentials(c credstore.Credentials) []error {
	var errs []error
	if err := ValidateHostname(c.Hostname); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateSSID(c.SSID); err != nil {
		errs = append(errs, err)
	}
	if err := ValidatePassword(c.Password); err != nil {
		errs = append(errs, err)
	}
	return errs
}
