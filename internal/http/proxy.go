// Package http builds the agent's HTTP clients: proxy-aware base clients
// for API calls and a pool-tuned variant for evidence uploads.
package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	ntlmssp "github.com/Azure/go-ntlmssp"
	"golang.org/x/net/http/httpproxy"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/config"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/constants"
)

// ConfigureHTTPClient builds an HTTP client honoring the configured
// proxy mode.
func ConfigureHTTPClient(cfg *config.AgentConfig) (*nethttp.Client, error) {
	transport := &nethttp.Transport{
		DialContext: (&net.Dialer{
			Timeout:   constants.HTTPDialTimeout,
			KeepAlive: constants.HTTPDialKeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		MaxConnsPerHost:       100,
		IdleConnTimeout:       constants.HTTPIdleConnTimeout,
		TLSHandshakeTimeout:   constants.HTTPTLSHandshakeTimeout,
		ExpectContinueTimeout: constants.HTTPExpectContinueTimeout,
	}

	proxy := cfg.Proxy

	switch strings.ToLower(proxy.Mode) {
	case "none", "":
		transport.Proxy = nil

	case "system":
		transport.Proxy = nethttp.ProxyFromEnvironment

	case "ntlm":
		// Fall back to direct when the saved config is incomplete, so the
		// operator can still reach `config` commands to fix it.
		if proxy.Host == "" {
			transport.Proxy = nil
			return &nethttp.Client{
				Transport: transport,
				Timeout:   constants.HTTPRequestTimeout,
			}, nil
		}

		proxyURL := buildProxyURL(proxy)
		transport.Proxy = proxyFuncWithBypass(proxyURL, proxy.NoProxy)

		client := &nethttp.Client{
			Transport: ntlmssp.Negotiator{
				RoundTripper: transport,
			},
			Timeout: constants.HTTPRequestTimeout,
		}

		if proxy.Warmup && proxy.Username != "" && proxy.Password != "" {
			if err := warmupProxy(client, cfg); err != nil {
				return nil, fmt.Errorf("proxy warmup failed: %w", err)
			}
		}

		return client, nil

	case "basic":
		if proxy.Host == "" {
			transport.Proxy = nil
			return &nethttp.Client{
				Transport: transport,
				Timeout:   constants.HTTPRequestTimeout,
			}, nil
		}

		proxyURL := buildProxyURL(proxy)
		transport.Proxy = proxyFuncWithBypass(proxyURL, proxy.NoProxy)

		client := &nethttp.Client{
			Transport: transport,
			Timeout:   constants.HTTPRequestTimeout,
		}

		if proxy.Warmup && proxy.Username != "" && proxy.Password != "" {
			if err := warmupProxy(client, cfg); err != nil {
				return nil, fmt.Errorf("proxy warmup failed: %w", err)
			}
		}

		return client, nil

	default:
		return nil, fmt.Errorf("unsupported proxy mode: %s", proxy.Mode)
	}

	return &nethttp.Client{
		Transport: transport,
		Timeout:   constants.HTTPRequestTimeout,
	}, nil
}

// buildProxyURL constructs a proxy URL from config
func buildProxyURL(proxy config.ProxyConfig) *url.URL {
	port := proxy.Port
	if port == 0 {
		port = 8080
	}

	proxyURL := &url.URL{
		Scheme: "http",
		Host:   fmt.Sprintf("%s:%d", proxy.Host, port),
	}

	// Embed credentials only when both halves are present. An empty
	// password in the URL trips auth on some proxies.
	if proxy.Username != "" && proxy.Password != "" {
		proxyURL.User = url.UserPassword(proxy.Username, proxy.Password)
	}

	return proxyURL
}

// warmupProxy sends a lightweight request through the proxy so auth
// failures surface at startup instead of mid-operation.
func warmupProxy(client *nethttp.Client, cfg *config.AgentConfig) error {
	warmupURL := cfg.BaseURL()
	if warmupURL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	req, err := nethttp.NewRequestWithContext(ctx, "HEAD", warmupURL+"/api/get_csrf", nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("warmup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("warmup request returned server error: %d", resp.StatusCode)
	}

	return nil
}

// proxyFuncWithBypass returns a proxy function that respects the NoProxy
// bypass list. With an empty list it behaves like nethttp.ProxyURL.
func proxyFuncWithBypass(proxyURL *url.URL, noProxy string) func(*nethttp.Request) (*url.URL, error) {
	if noProxy == "" {
		return nethttp.ProxyURL(proxyURL)
	}
	cfg := httpproxy.Config{
		HTTPProxy:  proxyURL.String(),
		HTTPSProxy: proxyURL.String(),
		NoProxy:    noProxy,
	}
	proxyFunc := cfg.ProxyFunc()
	return func(req *nethttp.Request) (*url.URL, error) {
		return proxyFunc(req.URL)
	}
}

// NeedsProxyPassword returns true if the proxy configuration requires a
// password but one has not been provided. Used by the CLI to decide
// whether to prompt interactively.
func NeedsProxyPassword(proxy config.ProxyConfig) bool {
	mode := strings.ToLower(proxy.Mode)
	if mode != "basic" && mode != "ntlm" {
		return false
	}
	return proxy.Username != "" && proxy.Password == ""
}
