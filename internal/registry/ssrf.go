package registry

import (
	"net"
	"net/url"
	"strings"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
)

// validateEndpoint enforces the SSRF deny-list from spec.md §4.1: the
// scheme must be http/https, file/gopher and friends are always rejected,
// and loopback/private/link-local addresses are rejected unless
// allowLocalhost is set. It is invoked once at client construction time,
// not per request.
func validateEndpoint(rawURL string, allowLocalhost bool) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apierrors.New(apierrors.CodeSSRFBlocked, "invalid registry url %q: %v", rawURL, err)
	}

	switch u.Scheme {
	case "http", "https":
	default:
		return nil, apierrors.New(apierrors.CodeSSRFBlocked, "scheme %q is not allowed", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return nil, apierrors.New(apierrors.CodeSSRFBlocked, "registry url %q has no host", rawURL)
	}

	if !allowLocalhost && isBlockedHost(host) {
		return nil, apierrors.New(apierrors.CodeSSRFBlocked,
			"registry host %q resolves to a blocked address range; set ALLOW_LOCALHOST=true to permit it", host)
	}

	return u, nil
}

// isBlockedHost reports whether host is a loopback, link-local, or
// private-range address (or resolves to one). Plain hostnames that are
// not literal IPs are resolved first.
func isBlockedHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}

	ips := []net.IP{}
	if ip := net.ParseIP(host); ip != nil {
		ips = append(ips, ip)
	} else if resolved, err := net.LookupIP(host); err == nil {
		ips = append(ips, resolved...)
	}

	for _, ip := range ips {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return true
		}
	}
	return false
}

// sameOrigin reports whether two URLs share scheme+host+port, used to
// constrain redirect following to the registry's own origin.
func sameOrigin(a, b *url.URL) bool {
	return a.Scheme == b.Scheme && a.Host == b.Host
}
