package http

import (
	"crypto/tls"
	nethttp "net/http"
	"os"

	"golang.org/x/net/http2"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/config"
	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/constants"
)

// CreateTransferClient creates an HTTP client tuned for large evidence
// uploads, layered on the proxy-aware base client.
//
// Differences from the base client:
//   - no overall timeout; uploads are bounded by their context
//   - larger idle pool so sequential batches reuse connections
//   - compression disabled, forensic images rarely compress
//   - HTTP/2 on by default, off behind a proxy or with DISABLE_HTTP2=true
func CreateTransferClient(cfg *config.AgentConfig) (*nethttp.Client, error) {
	baseClient, err := ConfigureHTTPClient(cfg)
	if err != nil {
		return nil, err
	}

	tr, ok := baseClient.Transport.(*nethttp.Transport)
	if !ok {
		// NTLM mode wraps the transport in a negotiator; pool tuning is
		// unreachable there. Just drop the overall timeout.
		baseClient.Timeout = 0
		return baseClient, nil
	}

	tr.MaxIdleConns = 512
	tr.MaxIdleConnsPerHost = 100
	tr.MaxConnsPerHost = 100
	tr.IdleConnTimeout = constants.HTTPIdleConnTimeout
	tr.TLSHandshakeTimeout = constants.HTTPTLSHandshakeTimeout
	tr.ExpectContinueTimeout = constants.HTTPExpectContinueTimeout
	tr.DisableCompression = true
	tr.ForceAttemptHTTP2 = true

	_ = http2.ConfigureTransport(tr)

	if os.Getenv("DISABLE_HTTP2") == "true" {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
	}

	// Proxies tend to mishandle HTTP/2 multiplexing on long transfers.
	if proxyActive(cfg) && os.Getenv("FORCE_HTTP2") != "true" {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
	}

	baseClient.Transport = tr
	baseClient.Timeout = 0

	return baseClient, nil
}

func proxyActive(cfg *config.AgentConfig) bool {
	switch cfg.Proxy.Mode {
	case "none", "":
		return false
	case "system":
		return os.Getenv("HTTP_PROXY") != "" || os.Getenv("HTTPS_PROXY") != "" ||
			os.Getenv("http_proxy") != "" || os.Getenv("https_proxy") != ""
	default:
		return true
	}
}
