package security

import (
	"net/netip"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// BaseURLOptions loosens base URL validation for proxies and local test servers.
type BaseURLOptions struct {
	// AllowHTTP permits plain http. https is always accepted.
	AllowHTTP bool
	// AllowLocalNetworks permits localhost names and loopback/private/link-local addresses.
	AllowLocalNetworks bool
}

// NormalizeBaseURL checks that rawURL is a safe target for provider requests
// carrying a credential and returns it without trailing slash, query or fragment.
func NormalizeBaseURL(rawURL string, opts BaseURLOptions) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", errors.Wrap(err, "invalid base URL")
	}

	switch u.Scheme {
	case "https":
	case "http":
		if !opts.AllowHTTP {
			return "", errors.Errorf("base URL %q: http is not allowed", rawURL)
		}
	default:
		return "", errors.Errorf("base URL %q: unsupported scheme %q", rawURL, u.Scheme)
	}

	if u.User != nil {
		return "", errors.Errorf("base URL %q: embedded credentials are not allowed", u.Redacted())
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", errors.Errorf("base URL %q: missing host", rawURL)
	}
	if !opts.AllowLocalNetworks {
		if err := checkPublicHost(host); err != nil {
			return "", errors.Wrapf(err, "base URL %q", rawURL)
		}
	}

	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
}

func checkPublicHost(host string) error {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".local") {
		return errors.Errorf("local hostname %q is not allowed", host)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		// not an IP literal, no DNS lookups here
		return nil
	}
	if addr.Zone() != "" {
		return errors.Errorf("zoned address %q is not allowed", host)
	}
	addr = addr.Unmap()
	if addr.IsUnspecified() || addr.IsMulticast() || addr.IsLoopback() ||
		addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() {
		return errors.Errorf("address %q is not publicly routable", host)
	}
	return nil
}
