package netguard

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	addrs map[string][]string
	err   error
}

func (r *fakeResolver) LookupIPAddr(_ context.Context, host string) ([]net.IPAddr, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []net.IPAddr
	for _, a := range r.addrs[host] {
		out = append(out, net.IPAddr{IP: net.ParseIP(a)})
	}
	if len(out) == 0 {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}
	return out, nil
}

func newTestGuard(opts Options) *Guard {
	return New(&fakeResolver{addrs: map[string][]string{
		"example.com":         {"93.184.216.34", "2606:2800:220:1:248:1893:25c8:1946"},
		"internal.corp.test":  {"10.0.0.12"},
		"mixed.example.test":  {"93.184.216.34", "192.168.1.10"},
		"metadata.cloud.test": {"169.254.169.254"},
	}}, opts)
}

func TestGuard_Validate(t *testing.T) {
	g := newTestGuard(Options{})
	ctx := context.Background()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "loopback literal", url: "http://127.0.0.1/x", wantErr: true},
		{name: "private 10/8", url: "http://10.1.2.3/x", wantErr: true},
		{name: "private 172.16/12", url: "http://172.20.0.1/x", wantErr: true},
		{name: "private 192.168/16", url: "https://192.168.0.1/x", wantErr: true},
		{name: "link local", url: "http://169.254.169.254/latest/meta-data", wantErr: true},
		{name: "localhost", url: "http://localhost/x", wantErr: true},
		{name: "localhost subdomain", url: "http://api.localhost:8080/x", wantErr: true},
		{name: "ipv6 loopback", url: "http://[::1]/x", wantErr: true},
		{name: "ipv6 link local", url: "http://[fe80::1]/x", wantErr: true},
		{name: "ipv6 unique local", url: "http://[fd12:3456::1]/x", wantErr: true},
		{name: "ipv4 mapped loopback", url: "http://[::ffff:127.0.0.1]/x", wantErr: true},
		{name: "unspecified", url: "http://0.0.0.0/x", wantErr: true},
		{name: "ftp scheme", url: "ftp://example.com/x", wantErr: true},
		{name: "no host", url: "https:///x", wantErr: true},
		{name: "dns to private", url: "https://internal.corp.test/hook", wantErr: true},
		{name: "dns any private address", url: "https://mixed.example.test/hook", wantErr: true},
		{name: "dns to metadata", url: "http://metadata.cloud.test/", wantErr: true},
		{name: "public dns", url: "https://example.com/x", wantErr: false},
		{name: "public literal", url: "https://93.184.216.34/x", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Validate(ctx, tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGuard_DNSFailurePolicy(t *testing.T) {
	ctx := context.Background()
	failing := &fakeResolver{err: errors.New("i/o timeout")}

	open := New(failing, Options{})
	assert.NoError(t, open.Validate(ctx, "https://hooks.partner.test/x"))

	closed := New(failing, Options{FailClosed: true})
	assert.Error(t, closed.Validate(ctx, "https://hooks.partner.test/x"))
}

func TestGuard_AllowPrivate(t *testing.T) {
	g := newTestGuard(Options{AllowPrivate: true})
	ctx := context.Background()

	assert.NoError(t, g.Validate(ctx, "http://127.0.0.1:9000/hook"))
	assert.Error(t, g.Validate(ctx, "http://localhost/hook"))
	assert.Error(t, g.Validate(ctx, "gopher://127.0.0.1/"))
}

func TestIsBlockedIP(t *testing.T) {
	tests := []struct {
		ip      string
		blocked bool
	}{
		{"8.8.8.8", false},
		{"93.184.216.34", false},
		{"1.1.1.1", false},
		{"2606:4700:4700::1111", false},
		{"127.0.0.1", true},
		{"10.0.0.1", true},
		{"100.64.1.1", true},
		{"198.51.100.7", true},
		{"::ffff:10.0.0.1", true},
		{"64:ff9b::a00:1", true},
		{"fd00::1", true},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			require.NotNil(t, ip)
			assert.Equal(t, tt.blocked, IsBlockedIP(ip))
		})
	}
}
