package urls

import "strings"

// Repository is the project home.
const Repository = "https://github.com/Ashwin-Rajesh/UniversalRemote-ESP32"

// Setup covers wiring the receiver and LED, and first-boot Wi-Fi setup.
const Setup = Repository + "#readme"

// Troubleshooting is where users report bridges that will not join or
// cannot be found.
const Troubleshooting = Repository + "/issues"

// Display strips the scheme for places where horizontal space is short.
func Display(url string) string {
	for _, prefix := range []string{"https://", "http://"} {
		if rest, ok := strings.CutPrefix(url, prefix); ok && rest != "" {
			return rest
		}
	}
	return url
}
