package jwtx

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"

	"github.com/plshark/userauth/pkg/cryptox"
)

// Supported algorithm names.
const (
	AlgNone     = "none"
	AlgHMAC256  = "hmac256"
	AlgHMAC512  = "hmac512"
	AlgECDSA256 = "ecdsa256"
)

// Config carries the signing configuration resolved at startup.
type Config struct {
	// Algorithm is the name of the signing algorithm (none, hmac256, ...).
	Algorithm string

	// Secret is the shared secret for HMAC algorithms.
	Secret string

	// KeyFile is the path to a PKCS8 PEM private key for asymmetric
	// algorithms. When KeyPassword is set the file is expected to be
	// AES-256-GCM encrypted (see cryptox.EncryptPrivateKey).
	KeyFile     string
	KeyPassword string
}

// Algorithm is a constructed sign/verify strategy. Built once at startup and
// shared read-only for the process lifetime.
type Algorithm struct {
	name      string
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
}

// Name returns the configured algorithm name.
func (a *Algorithm) Name() string { return a.name }

// Builder inspects cfg and either returns a constructed algorithm, or
// (nil, nil) when the configured name is not one it handles, or an error when
// the name matches but the key material is unusable.
type Builder func(cfg Config) (*Algorithm, error)

// Factory resolves a named algorithm against an ordered list of builders.
type Factory struct {
	builders []Builder
}

// NewFactory returns a factory over the given builders, tried in order.
func NewFactory(builders ...Builder) *Factory {
	return &Factory{builders: builders}
}

// DefaultBuilders returns the builders for every algorithm this service
// supports. The list is the extension point for new algorithms.
func DefaultBuilders() []Builder {
	return []Builder{
		BuildNone,
		BuildHMAC,
		BuildECDSA256,
	}
}

// Build resolves the configured algorithm. It runs once at process startup;
// any error here is fatal and must prevent the service from taking traffic.
func (f *Factory) Build(cfg Config) (*Algorithm, error) {
	for _, build := range f.builders {
		alg, err := build(cfg)
		if err != nil {
			return nil, err
		}
		if alg != nil {
			return alg, nil
		}
	}
	return nil, fmt.Errorf("jwtx: unsupported algorithm: %s", cfg.Algorithm)
}

// BuildNone handles the "none" algorithm. Tokens carry no signature, so this
// is only acceptable for local development.
func BuildNone(cfg Config) (*Algorithm, error) {
	if cfg.Algorithm != AlgNone {
		return nil, nil
	}
	return &Algorithm{
		name:      AlgNone,
		method:    jwt.SigningMethodNone,
		signKey:   jwt.UnsafeAllowNoneSignatureType,
		verifyKey: jwt.UnsafeAllowNoneSignatureType,
	}, nil
}

// BuildHMAC handles the symmetric hmac256/hmac512 algorithms.
func BuildHMAC(cfg Config) (*Algorithm, error) {
	var method jwt.SigningMethod
	switch cfg.Algorithm {
	case AlgHMAC256:
		method = jwt.SigningMethodHS256
	case AlgHMAC512:
		method = jwt.SigningMethodHS512
	default:
		return nil, nil
	}

	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwtx: a secret must be set when using the %s algorithm", cfg.Algorithm)
	}

	key := []byte(cfg.Secret)
	return &Algorithm{
		name:      cfg.Algorithm,
		method:    method,
		signKey:   key,
		verifyKey: key,
	}, nil
}

// BuildECDSA256 handles ecdsa256. The private key is loaded from a PKCS8 PEM
// file, decrypted first when a key password is configured. Signing uses the
// private key, verification the embedded public key.
func BuildECDSA256(cfg Config) (*Algorithm, error) {
	if cfg.Algorithm != AlgECDSA256 {
		return nil, nil
	}
	if cfg.KeyFile == "" {
		return nil, errors.New("jwtx: a key file must be set when using the ecdsa256 algorithm")
	}

	data, err := os.ReadFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("jwtx: read key file: %w", err)
	}

	if cfg.KeyPassword != "" {
		data, err = cryptox.DecryptPrivateKey(data, cfg.KeyPassword)
		if err != nil {
			return nil, fmt.Errorf("jwtx: decrypt key file: %w", err)
		}
	}

	key, err := parseECPrivateKey(data)
	if err != nil {
		return nil, err
	}

	return &Algorithm{
		name:      AlgECDSA256,
		method:    jwt.SigningMethodES256,
		signKey:   key,
		verifyKey: &key.PublicKey,
	}, nil
}

func parseECPrivateKey(pemData []byte) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for ecdsa256 key")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("jwtx: expected PRIVATE KEY, got %q (ecdsa256 requires PKCS8)", block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}

	key, ok := priv.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not an ECDSA private key")
	}
	if key.Curve.Params().Name != "P-256" {
		return nil, fmt.Errorf("jwtx: expected P-256 curve, got %s", key.Curve.Params().Name)
	}
	return key, nil
}
