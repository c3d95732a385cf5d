package transport

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"time"

	quic "github.com/quic-go/quic-go"
)

// ALPN is the protocol a controller must offer when dialing the judge.
const ALPN = "elevjudge"

const (
	quicIdleTimeout    = 30 * time.Second
	quicKeepAlive      = 5 * time.Second
	quicAcceptDeadline = 2 * time.Minute
	certLifetime       = 12 * time.Hour
)

// serverTLS builds a throwaway self-signed certificate for one judge process.
// Controllers are expected to skip verification.
func serverTLS(host string) (*tls.Config, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return nil, fmt.Errorf("serial: %w", err)
	}

	now := time.Now()
	tmpl := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: ALPN},
		DNSNames:              []string{"localhost"},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(certLifetime),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	if ip := net.ParseIP(host); ip != nil {
		tmpl.IPAddresses = []net.IP{ip}
	}

	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("self-sign: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{{Certificate: [][]byte{der}, PrivateKey: key}},
		NextProtos:   []string{ALPN},
		MinVersion:   tls.VersionTLS13,
	}, nil
}

// QUICListener accepts the controller connection of one session.
type QUICListener struct {
	ln *quic.Listener
}

func ListenQUIC(addr string) (*QUICListener, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("listen address %q: %w", addr, err)
	}
	tlsConf, err := serverTLS(host)
	if err != nil {
		return nil, err
	}
	quicConf := &quic.Config{
		MaxIdleTimeout:  quicIdleTimeout,
		KeepAlivePeriod: quicKeepAlive,
	}

	ln, err := quic.ListenAddr(addr, tlsConf, quicConf)
	if err != nil {
		return nil, fmt.Errorf("quic listen: %w", err)
	}
	return &QUICListener{ln: ln}, nil
}

func (q *QUICListener) Addr() net.Addr {
	return q.ln.Addr()
}

// Accept waits for one controller and opens the game stream towards it.
// State and commands share that single bidirectional stream. The link owns the listener.
func (q *QUICListener) Accept(ctx context.Context) (*Link, error) {
	slog.Info("Waiting for controller", "addr", q.ln.Addr())
	acceptCtx, cancel := context.WithTimeout(ctx, quicAcceptDeadline)
	defer cancel()

	conn, err := q.ln.Accept(acceptCtx)
	if err != nil {
		q.ln.Close()
		return nil, fmt.Errorf("quic accept: %w", err)
	}
	stream, err := conn.OpenStreamSync(acceptCtx)
	if err != nil {
		conn.CloseWithError(0, "open stream failed")
		q.ln.Close()
		return nil, fmt.Errorf("open stream: %w", err)
	}
	slog.Info("Controller connected", "remote", conn.RemoteAddr())

	l := &Link{Out: stream, In: stream}
	l.onClose(q.ln.Close)
	l.onClose(func() error { return conn.CloseWithError(0, "game over") })
	l.onClose(stream.Close)
	return l, nil
}
