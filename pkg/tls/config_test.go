package tls

import (
	"crypto/tls"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Enabled {
		t.Error("TLS should be disabled by default")
	}
	if !cfg.AutoGenerate {
		t.Error("Expected auto-generation on by default")
	}
	if cfg.ValidFor != 365*24*time.Hour {
		t.Errorf("Expected 1 year validity, got %v", cfg.ValidFor)
	}
}

func TestLoadTLSConfig_Disabled(t *testing.T) {
	tc, err := LoadTLSConfig(DefaultConfig())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tc != nil {
		t.Error("Expected nil config when disabled")
	}
}

func TestLoadTLSConfig_AutoGenerate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true

	tc, err := LoadTLSConfig(cfg)
	if err != nil {
		t.Fatalf("LoadTLSConfig failed: %v", err)
	}
	if len(tc.Certificates) != 1 {
		t.Fatalf("Expected 1 certificate, got %d", len(tc.Certificates))
	}
	if tc.MinVersion != tls.VersionTLS12 {
		t.Errorf("Expected TLS 1.2 minimum, got %x", tc.MinVersion)
	}
}

func TestLoadTLSConfig_GenerateThenReuse(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.CertFile = filepath.Join(dir, "certs", "server.crt")
	cfg.KeyFile = filepath.Join(dir, "certs", "server.key")

	if _, err := LoadTLSConfig(cfg); err != nil {
		t.Fatalf("First load failed: %v", err)
	}
	first, err := os.ReadFile(cfg.CertFile)
	if err != nil {
		t.Fatalf("Expected certificate written: %v", err)
	}
	info, err := os.Stat(cfg.KeyFile)
	if err != nil {
		t.Fatalf("Expected key written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("Expected key mode 0600, got %o", perm)
	}

	cfg.AutoGenerate = false
	if _, err := LoadTLSConfig(cfg); err != nil {
		t.Fatalf("Reload from files failed: %v", err)
	}
	second, _ := os.ReadFile(cfg.CertFile)
	if string(first) != string(second) {
		t.Error("Existing certificate should be reused, not regenerated")
	}
}

func TestLoadTLSConfig_Errors(t *testing.T) {
	cfg := Config{Enabled: true}
	if _, err := LoadTLSConfig(cfg); !errors.Is(err, ErrNoCertificate) {
		t.Errorf("Expected ErrNoCertificate, got %v", err)
	}

	dir := t.TempDir()
	cfg.CertFile = filepath.Join(dir, "missing.crt")
	cfg.KeyFile = filepath.Join(dir, "missing.key")
	if _, err := LoadTLSConfig(cfg); err == nil {
		t.Error("Expected error for missing files")
	}

	if err := os.WriteFile(cfg.CertFile, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.KeyFile, []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTLSConfig(cfg); err == nil {
		t.Error("Expected error for unparseable files")
	}
}

func TestGenerateSelfSigned_SANs(t *testing.T) {
	certPEM, keyPEM, err := GenerateSelfSigned([]string{"localhost", "127.0.0.1", "dash.internal"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateSelfSigned failed: %v", err)
	}
	if _, err := tls.X509KeyPair(certPEM, keyPEM); err != nil {
		t.Fatalf("Generated pair does not load: %v", err)
	}

	info, err := ParseCertificateInfo(certPEM)
	if err != nil {
		t.Fatalf("ParseCertificateInfo failed: %v", err)
	}
	if len(info.DNSNames) != 2 {
		t.Errorf("Expected 2 DNS names (IP goes to IP SANs), got %v", info.DNSNames)
	}
	if info.IsExpired() {
		t.Error("Fresh certificate should not be expired")
	}
	if d := info.ExpiresIn(); d <= 0 || d > time.Hour+time.Minute {
		t.Errorf("Expected expiry within about an hour, got %v", d)
	}
}

func TestGetCertificateInfo_Errors(t *testing.T) {
	if _, err := GetCertificateInfo(filepath.Join(t.TempDir(), "nope.crt")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := ParseCertificateInfo([]byte("not pem")); err == nil {
		t.Error("Expected error for invalid PEM")
	}
}
