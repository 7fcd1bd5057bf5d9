package httpx

import "golang.org/x/crypto/acme/autocert"

type TLSConfig struct {
	CertManager *autocert.Manager
}

// NewTLSConfig returns an autocert manager restricted to the
// given domain.
func NewTLSConfig(domain string) *TLSConfig {
	return &TLSConfig{
		CertManager: &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(domain),
			Cache:      autocert.DirCache("assets/cache"),
		},
	}
}
