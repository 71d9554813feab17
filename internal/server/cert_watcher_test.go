package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"resumatch/internal/config"
	"resumatch/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSelfSigned writes a throwaway certificate with the given serial number.
func writeSelfSigned(t *testing.T, certFile, keyFile string, serial int64) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject:      pkix.Name{CommonName: "localhost"},
		DNSNames:     []string{"localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
}

func servedSerial(t *testing.T, cr *CertReloader) int64 {
	t.Helper()
	cert, err := cr.GetCertificate(nil)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return leaf.SerialNumber.Int64()
}

func testLogger() *errors.Logger {
	return errors.NewLoggerWithWriter(io.Discard, slog.LevelDebug)
}

func TestCertReloader_LoadAndReload(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "tls.crt")
	keyFile := filepath.Join(dir, "tls.key")
	writeSelfSigned(t, certFile, keyFile, 1)

	cr, err := NewCertReloader(certFile, keyFile, 10*time.Millisecond, testLogger(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), servedSerial(t, cr))

	writeSelfSigned(t, certFile, keyFile, 2)
	require.NoError(t, cr.Reload(context.Background()))
	assert.Equal(t, int64(2), servedSerial(t, cr))

	// a broken pair keeps the previous certificate in service
	require.NoError(t, os.WriteFile(keyFile, []byte("garbage"), 0o600))
	assert.Error(t, cr.Reload(context.Background()))
	assert.Equal(t, int64(2), servedSerial(t, cr))
}

func TestCertReloader_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := NewCertReloader(filepath.Join(dir, "nope.crt"), filepath.Join(dir, "nope.key"), 0, testLogger(), nil)
	assert.Error(t, err)
}

func TestCertReloader_Watch(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "tls.crt")
	keyFile := filepath.Join(dir, "tls.key")
	writeSelfSigned(t, certFile, keyFile, 10)

	cr, err := NewCertReloader(certFile, keyFile, 20*time.Millisecond, testLogger(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cr.Watch(ctx) }()

	// give the watcher a moment to register the directory
	time.Sleep(100 * time.Millisecond)
	writeSelfSigned(t, certFile, keyFile, 11)

	assert.Eventually(t, func() bool { return servedSerial(t, cr) == 11 }, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestBuildTLSConfig(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "tls.crt")
	keyFile := filepath.Join(dir, "tls.key")
	writeSelfSigned(t, certFile, keyFile, 5)

	t.Run("static server", func(t *testing.T) {
		cfg := config.TLSConfig{Mode: "server", CertFile: certFile, KeyFile: keyFile, MinVersion: "1.3"}
		tlsConfig, err := buildTLSConfig(cfg, nil)
		require.NoError(t, err)
		assert.Len(t, tlsConfig.Certificates, 1)
		assert.Equal(t, uint16(tls.VersionTLS13), tlsConfig.MinVersion)
		assert.Equal(t, tls.NoClientCert, tlsConfig.ClientAuth)
	})

	t.Run("mutual with reloader", func(t *testing.T) {
		cr, err := NewCertReloader(certFile, keyFile, 0, testLogger(), nil)
		require.NoError(t, err)

		cfg := config.TLSConfig{Mode: "mutual", CertFile: certFile, KeyFile: keyFile, CAFile: certFile, ClientAuthPolicy: "verify"}
		tlsConfig, err := buildTLSConfig(cfg, cr)
		require.NoError(t, err)
		assert.NotNil(t, tlsConfig.GetCertificate)
		assert.NotNil(t, tlsConfig.ClientCAs)
		assert.Equal(t, tls.VerifyClientCertIfGiven, tlsConfig.ClientAuth)
		assert.Equal(t, uint16(tls.VersionTLS12), tlsConfig.MinVersion)
	})

	t.Run("cipher suites", func(t *testing.T) {
		cfg := config.TLSConfig{Mode: "server", CertFile: certFile, KeyFile: keyFile,
			CipherSuites: []string{"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256"}}
		tlsConfig, err := buildTLSConfig(cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, []uint16{tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256}, tlsConfig.CipherSuites)

		cfg.CipherSuites = []string{"TLS_MADE_UP"}
		_, err = buildTLSConfig(cfg, nil)
		assert.Error(t, err)
	})

	t.Run("missing CA", func(t *testing.T) {
		cfg := config.TLSConfig{Mode: "mutual", CertFile: certFile, KeyFile: keyFile}
		_, err := buildTLSConfig(cfg, nil)
		assert.Error(t, err)
	})
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "bogus, 203.0.113.7, 10.0.0.1"}, "10.0.0.2:5000", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:5000", "198.51.100.4"},
		{"remote addr", nil, "192.0.2.9:4321", "192.0.2.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, "/", nil)
			require.NoError(t, err)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}

	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "abcdefgh****", maskAPIKey("abcdefghijkl"))
}
