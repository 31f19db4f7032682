// Package netguard rejects outbound target URLs that point at internal
// networks. It is applied when a subscriber endpoint is registered and again
// before every delivery.
package netguard

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	apperrors "mallhub/internal/shared/errors"
)

// Resolver is the subset of *net.Resolver the guard needs.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Options tune the guard. The zero value is the production policy: DNS
// lookup errors allow the URL and private targets are rejected.
type Options struct {
	// AllowPrivate disables the address range check. Development only.
	AllowPrivate bool
	// FailClosed rejects URLs whose host cannot be resolved.
	FailClosed bool
}

type Guard struct {
	resolver Resolver
	opts     Options
}

func New(resolver Resolver, opts Options) *Guard {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &Guard{resolver: resolver, opts: opts}
}

// Validate returns a validation AppError when rawURL must not be called.
func (g *Guard) Validate(ctx context.Context, rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return apperrors.NewValidationError("invalid target url", err.Error())
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return apperrors.NewValidationError("target url must use http or https", u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return apperrors.NewValidationError("target url has no host")
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return apperrors.NewValidationError("target url cannot be localhost")
	}

	if g.opts.AllowPrivate {
		return nil
	}

	if ip := parseIP(host); ip != nil {
		if IsBlockedIP(ip) {
			return apperrors.NewValidationError("target url resolves to a private or reserved address", ip.String())
		}
		return nil
	}

	addrs, err := g.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		if g.opts.FailClosed {
			return apperrors.NewValidationError("target host could not be resolved", host)
		}
		return nil
	}
	for _, addr := range addrs {
		ip := addr.IP
		if v4 := ip.To4(); v4 != nil {
			ip = v4
		}
		if IsBlockedIP(ip) {
			return apperrors.NewValidationError("target url resolves to a private or reserved address",
				fmt.Sprintf("%s -> %s", host, ip))
		}
	}
	return nil
}

// parseIP handles bracketless IPv6 and folds IPv4-mapped IPv6 addresses.
func parseIP(host string) net.IP {
	ip := net.ParseIP(host)
	if ip == nil {
		return nil
	}
	if v4 := ip.To4(); v4 != nil {
		return v4
	}
	return ip
}

// IsBlockedIP reports whether ip is loopback, private, link-local,
// unique-local, unspecified, multicast or in a reserved range.
func IsBlockedIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() {
		return true
	}
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast() {
		return true
	}
	for _, network := range reservedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

var reservedNetworks []*net.IPNet

func init() {
	cidrs := []string{
		"0.0.0.0/8",       // "this" network
		"100.64.0.0/10",   // carrier-grade NAT
		"192.0.0.0/24",    // IETF protocol assignments
		"192.0.2.0/24",    // TEST-NET-1
		"198.18.0.0/15",   // benchmarking
		"198.51.100.0/24", // TEST-NET-2
		"203.0.113.0/24",  // TEST-NET-3
		"240.0.0.0/4",     // reserved
		"fc00::/7",        // unique local
		"fe80::/10",       // link local
		"64:ff9b::/96",    // NAT64
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err == nil {
			reservedNetworks = append(reservedNetworks, network)
		}
	}
}
