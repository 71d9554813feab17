package config

import (
	"fmt"
	"slices"
)

var (
	tlsModes          = []string{"disabled", "server", "mutual"}
	tlsVersions       = []string{"", "1.2", "1.3"}
	clientAuthPolices = []string{"", "require", "request", "verify"}
)

// ValidateTLSConfig checks mode, certificate sources and protocol options
func (c *Config) ValidateTLSConfig() error {
	tls := c.Server.TLS

	if !slices.Contains(tlsModes, tls.Mode) {
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", tls.Mode)
	}
	if !slices.Contains(tlsVersions, tls.MinVersion) {
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", tls.MinVersion)
	}
	if tls.Mode == "disabled" {
		return nil
	}

	if err := exactlyOneSource("certificate", tls.CertFile, tls.CertContent); err != nil {
		return err
	}
	if err := exactlyOneSource("private key", tls.KeyFile, tls.KeyContent); err != nil {
		return err
	}
	if tls.Mode != "mutual" {
		return nil
	}

	if err := exactlyOneSource("CA certificate", tls.CAFile, tls.CAContent); err != nil {
		return err
	}
	if !slices.Contains(clientAuthPolices, tls.ClientAuthPolicy) {
		return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", tls.ClientAuthPolicy)
	}
	return nil
}

// exactlyOneSource requires a PEM input from either a file or inline content, not both
func exactlyOneSource(what, file, content string) error {
	switch {
	case file == "" && content == "":
		return fmt.Errorf("TLS %s is required (provide either a file or content)", what)
	case file != "" && content != "":
		return fmt.Errorf("cannot specify both a file and content for the TLS %s", what)
	}
	return nil
}

// UsesCertFiles reports whether certificates are read from disk and can be watched
func (t TLSConfig) UsesCertFiles() bool {
	return t.Mode != "disabled" && t.CertFile != "" && t.KeyFile != ""
}
