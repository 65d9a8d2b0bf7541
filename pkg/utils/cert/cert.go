// Package cert generates throwaway self-signed certificates and keys as
// temporary files. It exists for tests that need a real PEM pair on disk,
// such as the TLS wiring of the backend client.
package cert

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/utils/errs"
)

var (
	ErrFailedToGeneratePrivateKey = errors.New("failed to generate private key")
	ErrFailedToCreateCertificate  = errors.New("failed to create certificate")
	ErrFailedToMarshalPrivateKey  = errors.New("failed to marshal private key")
	ErrFailedToWriteDataToCert    = errors.New("failed to write data to cert.pem")
	ErrFailedToWriteDataToKey     = errors.New("failed to write data to key.pem")
	ErrFailedToCreateCertTempFile = errors.New("failed to create temp file for cert")
	ErrFailedToCreateKeyTempFile  = errors.New("failed to create temp file for key")
)

// GenerateTemporaryCertAndKey writes a self-signed X.509 certificate and its
// EC private key to temporary files and returns both paths. Callers own the
// cleanup of the files.
func GenerateTemporaryCertAndKey() (string, string, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", errs.Wrap(ErrFailedToGeneratePrivateKey, err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"Test Org"},
		},
		NotBefore: time.Now(),
		NotAfter:  time.Now().Add(365 * 24 * time.Hour),

		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return "", "", errs.Wrap(ErrFailedToCreateCertificate, err)
	}

	certOut, err := os.CreateTemp("", fmt.Sprintf("cert-%d.pem", time.Now().Unix()))
	if err != nil {
		return "", "", errs.Wrap(ErrFailedToCreateCertTempFile, err)
	}
	defer certOut.Close()

	err = pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: derBytes})
	if err != nil {
		return "", "", errs.Wrap(ErrFailedToWriteDataToCert, err)
	}

	keyOut, err := os.CreateTemp("", fmt.Sprintf("key-%d.pem", time.Now().Unix()))
	if err != nil {
		return "", "", errs.Wrap(ErrFailedToCreateKeyTempFile, err)
	}
	defer keyOut.Close()

	privBytes, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return "", "", errs.Wrap(ErrFailedToMarshalPrivateKey, err)
	}

	err = pem.Encode(keyOut, &pem.Block{Type: "EC PRIVATE KEY", Bytes: privBytes})
	if err != nil {
		return "", "", errs.Wrap(ErrFailedToWriteDataToKey, err)
	}

	return certOut.Name(), keyOut.Name(), nil
}
