package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		opts    BaseURLOptions
		want    string
		wantErr bool
	}{
		{name: "anthropic", in: "https://api.anthropic.com", want: "https://api.anthropic.com"},
		{name: "trailing slash and query", in: "https://api.anthropic.com/?x=1#frag", want: "https://api.anthropic.com"},
		{name: "proxy path", in: "https://proxy.example.com/anthropic/", want: "https://proxy.example.com/anthropic"},
		{name: "http rejected", in: "http://api.anthropic.com", wantErr: true},
		{name: "http allowed", in: "http://api.anthropic.com", opts: BaseURLOptions{AllowHTTP: true}, want: "http://api.anthropic.com"},
		{name: "ftp rejected", in: "ftp://api.anthropic.com", wantErr: true},
		{name: "missing host", in: "https:///v1", wantErr: true},
		{name: "userinfo rejected", in: "https://user:pw@api.anthropic.com", wantErr: true},
		{name: "localhost rejected", in: "https://localhost:8080", wantErr: true},
		{name: "loopback rejected", in: "https://127.0.0.1:8080", wantErr: true},
		{name: "private rejected", in: "https://10.1.2.3", wantErr: true},
		{name: "zoned ipv6 rejected", in: "https://[fe80::1%25eth0]/", wantErr: true},
		{
			name: "local test server",
			in:   "http://127.0.0.1:41234",
			opts: BaseURLOptions{AllowHTTP: true, AllowLocalNetworks: true},
			want: "http://127.0.0.1:41234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeBaseURL(tt.in, tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
