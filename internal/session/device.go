package session

import (
	"net"
	"strings"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
)

// ParseDeviceInfo classifies a raw user agent string into browser, operating
// system and device type by substring matching. The result is advisory
// context for session listings and audit entries, never an authorization
// input.
func ParseDeviceInfo(userAgent string) models.DeviceInfo {
	info := models.DeviceInfo{
		UserAgent:  userAgent,
		DeviceType: "desktop",
		Browser:    "unknown",
		OS:         "unknown",
	}

	ua := strings.ToLower(userAgent)
	if ua == "" {
		info.DeviceType = "unknown"
		return info
	}

	// Tablets first: tablet user agents often carry "mobile" as well.
	switch {
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		info.DeviceType = "tablet"
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "android"):
		info.DeviceType = "mobile"
	}

	// Order matters: Edge and Opera embed "chrome", Chrome embeds "safari".
	switch {
	case strings.Contains(ua, "edg"):
		info.Browser = "Edge"
	case strings.Contains(ua, "opr") || strings.Contains(ua, "opera"):
		info.Browser = "Opera"
	case strings.Contains(ua, "chrome"):
		info.Browser = "Chrome"
	case strings.Contains(ua, "firefox"):
		info.Browser = "Firefox"
	case strings.Contains(ua, "safari"):
		info.Browser = "Safari"
	}

	switch {
	case strings.Contains(ua, "windows"):
		info.OS = "Windows"
	case strings.Contains(ua, "android"):
		info.OS = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ios"):
		info.OS = "iOS"
	case strings.Contains(ua, "mac os") || strings.Contains(ua, "macintosh"):
		info.OS = "macOS"
	case strings.Contains(ua, "linux"):
		info.OS = "Linux"
	}

	return info
}

// ClassifyIP classifies an address as local or unknown. There is no real
// geolocation backend; anything that is not loopback or private address space
// stays unknown.
func ClassifyIP(ipAddress string) models.Location {
	loc := models.Location{
		IPAddress: ipAddress,
		Country:   "unknown",
		City:      "unknown",
	}

	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return loc
	}

	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() {
		loc.IsLocal = true
		loc.Country = "local"
		loc.City = "local"
	}

	return loc
}
