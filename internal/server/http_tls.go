package server

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"resumatch/internal/config"
)

// buildTLSConfig creates the TLS configuration. With a reloader the server
// certificate is resolved per handshake; otherwise it is loaded once.
func buildTLSConfig(cfg config.TLSConfig, reloader *CertReloader) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion: tlsMinVersion(cfg.MinVersion),
	}

	if reloader != nil {
		tlsConfig.GetCertificate = reloader.GetCertificate
	} else {
		cert, err := loadServerCertificate(cfg)
		if err != nil {
			return nil, err
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if len(cfg.CipherSuites) > 0 {
		suites := make([]uint16, 0, len(cfg.CipherSuites))
		for _, name := range cfg.CipherSuites {
			id, ok := getCipherSuiteID(name)
			if !ok {
				return nil, fmt.Errorf("unknown cipher suite: %s", name)
			}
			suites = append(suites, id)
		}
		tlsConfig.CipherSuites = suites
	}

	if cfg.Mode != "mutual" {
		tlsConfig.ClientAuth = tls.NoClientCert
		return tlsConfig, nil
	}

	pool, err := loadCACertificatePool(cfg)
	if err != nil {
		return nil, err
	}
	tlsConfig.ClientCAs = pool
	tlsConfig.ClientAuth = clientAuthPolicy(cfg.ClientAuthPolicy)
	return tlsConfig, nil
}

// loadServerCertificate loads the server certificate from content or files
func loadServerCertificate(cfg config.TLSConfig) (tls.Certificate, error) {
	if cfg.CertContent != "" && cfg.KeyContent != "" {
		cert, err := tls.X509KeyPair([]byte(cfg.CertContent), []byte(cfg.KeyContent))
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load server cert/key from content: %w", err)
		}
		return cert, nil
	}
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load server cert/key from files: %w", err)
		}
		return cert, nil
	}
	return tls.Certificate{}, fmt.Errorf("TLS certificate and key are required (provide either files or content)")
}

func loadCACertificatePool(cfg config.TLSConfig) (*x509.CertPool, error) {
	var caCert []byte
	switch {
	case cfg.CAContent != "":
		caCert = []byte(cfg.CAContent)
	case cfg.CAFile != "":
		data, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		caCert = data
	default:
		return nil, fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to append CA cert")
	}
	return pool, nil
}

func tlsMinVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

func clientAuthPolicy(policy string) tls.ClientAuthType {
	switch policy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}

// getCipherSuiteID resolves a cipher suite by its IANA name.
func getCipherSuiteID(name string) (uint16, bool) {
	for _, suite := range tls.CipherSuites() {
		if suite.Name == name {
			return suite.ID, true
		}
	}
	return 0, false
}
