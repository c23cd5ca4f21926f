// Package certs loads extra trusted CA certificates for the API client.
package certs

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoCertificates is returned when a path holds no PEM certificate.
var ErrNoCertificates = errors.New("certs: no certificates found")

// LoadCertificates loads every .crt/.pem certificate under path, which may
// be a single file or a directory walked recursively.
func LoadCertificates(path string) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate

	err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(info.Name(), ".crt") && !strings.HasSuffix(info.Name(), ".pem") {
			return nil
		}
		found, err := loadFile(p)
		if err != nil {
			return err
		}
		certs = append(certs, found...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoCertificates, path)
	}
	return certs, nil
}

// loadFile parses every CERTIFICATE block of a PEM file.
func loadFile(path string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("certs: %s: %w", path, err)
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

// IsExpired checks if a certificate is expired.
func IsExpired(cert *x509.Certificate) bool {
	return cert.NotAfter.Before(time.Now())
}

// LoadPool returns the system pool with the certificates under path added.
// Expired certificates are skipped and reported through skipped.
func LoadPool(path string) (pool *x509.CertPool, skipped []*x509.Certificate, err error) {
	certs, err := LoadCertificates(path)
	if err != nil {
		return nil, nil, err
	}
	pool, err = x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	for _, cert := range certs {
		if IsExpired(cert) {
			skipped = append(skipped, cert)
			continue
		}
		pool.AddCert(cert)
	}
	return pool, skipped, nil
}

// HTTPClient returns a client trusting pool with the given timeout.
func HTTPClient(pool *x509.CertPool, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}
