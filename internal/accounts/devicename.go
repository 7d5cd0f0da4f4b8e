package accounts

import (
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// DeviceDisplayName derives a human-readable label from the signup
// User-Agent, for the diagnostics listing only. It is never used as a device
// identity; that comes from the resolver.
func DeviceDisplayName(userAgentString string) string {
	if strings.TrimSpace(userAgentString) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgentString)
	browser, _ := ua.Browser()
	os := ua.OSInfo().Name

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(fmt.Sprintf("%s on %s", browser, os))
}
