package urlhandler

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// privateNetworks lists the address ranges a fetch must never target
// (anti-SSRF): RFC1918, loopback, link-local, and their IPv6 equivalents.
var privateNetworks []*net.IPNet

func init() {
	for _, cidr := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"169.254.0.0/16",
		"::1/128",
		"fc00::/7",
		"fe80::/10",
	} {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid private network CIDR %q: %v", cidr, err))
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// blockedHosts are local names rejected outright.
var blockedHosts = map[string]struct{}{
	"localhost": {},
	"0.0.0.0":   {},
}

var allowedSchemes = map[string]struct{}{
	"http":  {},
	"https": {},
}

// IsPrivateIP reports whether an IP literal falls into a private or local
// range. Non-IP strings report false.
func IsPrivateIP(host string) bool {
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// ValidateTarget validates a URL before it is fetched. It rejects
// non-http(s) schemes, hostless URLs, local hostnames, private/loopback IP
// literals, and URLs containing control characters. The returned error
// carries the rejection reason.
func ValidateTarget(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("URL is empty")
	}

	if strings.ContainsAny(rawURL, "\x00\r\n\t") {
		return fmt.Errorf("URL contains control characters")
	}

	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("URL does not parse: %w", err)
	}

	if _, ok := allowedSchemes[parsed.Scheme]; !ok {
		return fmt.Errorf("scheme '%s' is not allowed, use http or https", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("URL lacks a hostname")
	}

	if _, blocked := blockedHosts[strings.ToLower(host)]; blocked {
		return fmt.Errorf("host '%s' is a local name", host)
	}

	if IsPrivateIP(host) {
		return fmt.Errorf("host '%s' resolves to a private or loopback range", host)
	}

	return nil
}
