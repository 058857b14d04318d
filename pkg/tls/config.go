// Package tls builds the server TLS configuration for the view API from
// certificate files or a generated self-signed certificate.
package tls

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// ErrNoCertificate is returned when TLS is enabled without a way to get a certificate
var ErrNoCertificate = errors.New("TLS enabled but no certificate provided and auto-generation disabled")

// LoadTLSConfig returns nil when TLS is disabled
func LoadTLSConfig(cfg Config) (*tls.Config, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	cert, err := loadCertificate(cfg)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		CipherSuites: SecureCipherSuites(),
	}, nil
}

func loadCertificate(cfg Config) (tls.Certificate, error) {
	haveFiles := cfg.CertFile != "" && cfg.KeyFile != ""

	if haveFiles && fileExists(cfg.CertFile) && fileExists(cfg.KeyFile) {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load TLS certificate: %w", err)
		}
		return cert, nil
	}
	if !cfg.AutoGenerate {
		if haveFiles {
			return tls.Certificate{}, fmt.Errorf("failed to load TLS certificate: %s or %s missing", cfg.CertFile, cfg.KeyFile)
		}
		return tls.Certificate{}, ErrNoCertificate
	}

	certPEM, keyPEM, err := GenerateSelfSigned(cfg.Hosts, cfg.ValidFor)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate self-signed certificate: %w", err)
	}
	if haveFiles {
		if err := SavePEM(certPEM, keyPEM, cfg.CertFile, cfg.KeyFile); err != nil {
			return tls.Certificate{}, err
		}
	}
	return tls.X509KeyPair(certPEM, keyPEM)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// GetCertificateInfo returns information about a PEM certificate file
func GetCertificateInfo(certFile string) (*CertificateInfo, error) {
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate: %w", err)
	}
	return ParseCertificateInfo(certPEM)
}

// ParseCertificateInfo returns information about the first certificate in certPEM
func ParseCertificateInfo(certPEM []byte) (*CertificateInfo, error) {
	block, _ := pem.Decode(certPEM)
	if block == nil {
		return nil, fmt.Errorf("failed to parse certificate PEM")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}

	return &CertificateInfo{
		Subject:      cert.Subject.String(),
		Issuer:       cert.Issuer.String(),
		SerialNumber: cert.SerialNumber.String(),
		NotBefore:    cert.NotBefore,
		NotAfter:     cert.NotAfter,
		DNSNames:     cert.DNSNames,
		IsCA:         cert.IsCA,
	}, nil
}
