package deviceconfig

import (
	"strings"

	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/credstore"
	"github.com/Ashwin-Rajesh/UniversalRemote-ESP32/internal/protocol"
)

// PayloadSeparator delimits fields in configure payloads and scan results.
const PayloadSeparator = "$"

// ParseConfigurePayload splits "<hostname>$<ssid>$<password>$". The trailing
// separator is optional. A payload with fewer than two separators returns a
// *protocol.FormatError alongside whatever fields could be read; the password
// ends at the next separator, so a password containing '$' is cut short.
func ParseConfigurePayload(payload string) (credstore.Credentials, error) {
	var c credstore.Credentials

	host, rest, hasSSID := strings.Cut(payload, PayloadSeparator)
	ssid, rest, hasPassword := strings.Cut(rest, PayloadSeparator)
	password, _, _ := strings.Cut(rest, PayloadSeparator)

	c.Hostname = host
	if hasSSID {
		c.SSID = ssid
	}
	if hasPassword {
		c.Password = password
	}

	if !hasSSID || !hasPassword {
		return c, &protocol.FormatError{
			Codec:  "configure",
			Reason: "expected <hostname>$<ssid>$<password>$",
			Input:  redact(c),
		}
	}
	return c, nil
}

// FormatConfigurePayload is the inverse of ParseConfigurePayload.
func FormatConfigurePayload(c credstore.Credentials) string {
	return c.Hostname + PayloadSeparator + c.SSID + PayloadSeparator + c.Password + PayloadSeparator
}

func redact(c credstore.Credentials) string {
	masked := ""
	if c.Password != "" {
		masked = "***"
	}
	return c.Hostname + PayloadSeparator + c.SSID + PayloadSeparator + masked
}

// JoinNetworkList renders scan results the way the portal expects them:
// every name followed by the separator.
func JoinNetworkList(ssids []string) string {
	var b strings.Builder
	for _, ssid := range ssids {
		b.WriteString(ssid)
		b.WriteString(PayloadSeparator)
	}
	return b.String()
}

// SplitNetworkList parses JoinNetworkList output, skipping empty names.
func SplitNetworkList(list string) []string {
	var ssids []string
	for _, ssid := range strings.Split(list, PayloadSeparator) {
		if ssid != "" {
			ssids = append(ssids, ssid)
		}
	}
	return ssids
}
