package http

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/config"
)

func TestProxyFuncWithBypass_EmptyNoProxy(t *testing.T) {
	proxyURL, _ := url.Parse("http://proxy.corp:8080")
	proxyFunc := proxyFuncWithBypass(proxyURL, "")

	req, _ := http.NewRequest("GET", "https://carver.lab.example/api/devices", nil)
	result, err := proxyFunc(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("expected proxy URL, got nil (direct)")
	}
	if result.Host != "proxy.corp:8080" {
		t.Errorf("expected proxy host proxy.corp:8080, got %s", result.Host)
	}
}

func TestProxyFuncWithBypass_Patterns(t *testing.T) {
	proxyURL, _ := url.Parse("http://proxy.corp:8080")
	proxyFunc := proxyFuncWithBypass(proxyURL, "*.lab.example, 10.0.0.0/8, internal.corp")

	tests := []struct {
		name       string
		url        string
		wantBypass bool
	}{
		{"wildcard match", "https://carver.lab.example/api/devices", true},
		{"cidr match", "http://10.1.2.3:8080/api/get_csrf", true},
		{"exact domain match", "https://internal.corp/status", true},
		{"non-match", "https://example.org/api", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", tt.url, nil)
			result, err := proxyFunc(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantBypass && result != nil {
				t.Errorf("expected bypass (nil) for %s, got %v", tt.url, result)
			}
			if !tt.wantBypass && result == nil {
				t.Errorf("expected proxy for %s, got nil (bypass)", tt.url)
			}
		})
	}
}

func TestConfigureHTTPClientModes(t *testing.T) {
	for _, mode := range []string{"", "none", "system", "basic", "ntlm"} {
		t.Run("mode "+mode, func(t *testing.T) {
			cfg := config.NewAgentConfig()
			cfg.ServerURL = "https://carver.lab.example"
			cfg.Proxy.Mode = mode
			if mode == "basic" || mode == "ntlm" {
				cfg.Proxy.Host = "proxy.corp"
				cfg.Proxy.Port = 3128
			}
			client, err := ConfigureHTTPClient(cfg)
			if err != nil {
				t.Fatalf("ConfigureHTTPClient(%q) error: %v", mode, err)
			}
			if client == nil {
				t.Fatal("nil client")
			}
		})
	}

	cfg := config.NewAgentConfig()
	cfg.Proxy.Mode = "socks"
	if _, err := ConfigureHTTPClient(cfg); err == nil {
		t.Error("expected error for unsupported proxy mode")
	}
}

func TestConfigureHTTPClientIncompleteAuthProxyFallsBack(t *testing.T) {
	// A saved basic/ntlm config without a host must still yield a working
	// direct client so the operator can repair the config.
	for _, mode := range []string{"basic", "ntlm"} {
		cfg := config.NewAgentConfig()
		cfg.Proxy.Mode = mode
		client, err := ConfigureHTTPClient(cfg)
		if err != nil {
			t.Fatalf("ConfigureHTTPClient(%q without host) error: %v", mode, err)
		}
		if client == nil {
			t.Fatal("nil client")
		}
	}
}

func TestNeedsProxyPassword(t *testing.T) {
	tests := []struct {
		name  string
		proxy config.ProxyConfig
		want  bool
	}{
		{"system mode", config.ProxyConfig{Mode: "system", Username: "u"}, false},
		{"basic with password", config.ProxyConfig{Mode: "basic", Username: "u", Password: "p"}, false},
		{"basic missing password", config.ProxyConfig{Mode: "basic", Username: "u"}, true},
		{"ntlm missing password", config.ProxyConfig{Mode: "ntlm", Username: "u"}, true},
		{"basic anonymous", config.ProxyConfig{Mode: "basic"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsProxyPassword(tt.proxy); got != tt.want {
				t.Errorf("NeedsProxyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}
