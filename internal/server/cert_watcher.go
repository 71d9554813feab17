package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"resumatch/internal/errors"
	"resumatch/internal/observability"

	"github.com/fsnotify/fsnotify"
)

// CertReloader serves the current key pair and swaps it when the files on disk change
type CertReloader struct {
	certFile      string
	keyFile       string
	debounceDelay time.Duration

	cert    atomic.Pointer[tls.Certificate]
	logger  *errors.Logger
	metrics *observability.Metrics
}

// NewCertReloader loads the initial key pair; a failure here is fatal for the server.
func NewCertReloader(certFile, keyFile string, debounceDelay time.Duration, logger *errors.Logger, metrics *observability.Metrics) (*CertReloader, error) {
	if debounceDelay <= 0 {
		debounceDelay = time.Second
	}
	cr := &CertReloader{
		certFile:      filepath.Clean(certFile),
		keyFile:       filepath.Clean(keyFile),
		debounceDelay: debounceDelay,
		logger:        logger,
		metrics:       metrics,
	}
	if err := cr.load(); err != nil {
		return nil, err
	}
	return cr, nil
}

func (cr *CertReloader) load() error {
	cert, err := tls.LoadX509KeyPair(cr.certFile, cr.keyFile)
	if err != nil {
		return fmt.Errorf("failed to load server cert/key from files: %w", err)
	}
	cr.cert.Store(&cert)
	return nil
}

// GetCertificate is plugged into tls.Config.
func (cr *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return cr.cert.Load(), nil
}

// Reload re-reads the key pair. On failure the previous pair stays in use.
func (cr *CertReloader) Reload(ctx context.Context) error {
	err := cr.load()
	cr.metrics.RecordCertReload(ctx, err == nil)
	if err != nil {
		cr.logger.LogError(err, "Failed to reload TLS certificates, keeping the previous pair")
		return err
	}
	cr.logger.Info("TLS certificates reloaded", "cert_file", cr.certFile)
	return nil
}

// Watch blocks until ctx is done, reloading after changes settle for the debounce delay.
// Directories are watched instead of files so atomic renames and symlink swaps are seen.
func (cr *CertReloader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dirs := []string{filepath.Dir(cr.certFile)}
	if dir := filepath.Dir(cr.keyFile); !slices.Contains(dirs, dir) {
		dirs = append(dirs, dir)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}
	cr.logger.Info("Certificate file watcher started",
		"directories", dirs,
		"debounce_delay", cr.debounceDelay)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			cr.logger.Info("Certificate file watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !cr.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(cr.debounceDelay)
			} else {
				timer.Reset(cr.debounceDelay)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			_ = cr.Reload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cr.logger.Warn("Certificate file watcher error", "error", err)
		}
	}
}

// relevant reports whether event touches one of the watched files, or is a
// Kubernetes-style "..data" symlink swap in their directory.
func (cr *CertReloader) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	name := filepath.Clean(event.Name)
	if name == cr.certFile || name == cr.keyFile {
		return true
	}
	return filepath.Base(name) == "..data"
}
