// Package server provides the security layers the network servers listen through.
package server

import (
	"crypto/tls"
	"fmt"
	"net"

	"github.com/dtroode/cacart/internal/model"
)

// TLSListener opens TLS listeners with a certificate loaded once at construction.
type TLSListener struct {
	config *tls.Config
}

var _ model.SecurityLayer = (*TLSListener)(nil)

// NewTLSListener loads the key pair from certFileName and privateKeyFileName.
func NewTLSListener(certFileName, privateKeyFileName string) (*TLSListener, error) {
	cert, err := tls.LoadX509KeyPair(certFileName, privateKeyFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}
	return &TLSListener{
		config: &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		},
	}, nil
}

// Listen announces on addr and wraps accepted connections in TLS.
func (l *TLSListener) Listen(protocol, addr string) (net.Listener, error) {
	return tls.Listen(protocol, addr, l.config)
}

// PlainListener opens unencrypted listeners.
type PlainListener struct{}

var _ model.SecurityLayer = (*PlainListener)(nil)

func NewPlainListener() *PlainListener {
	return &PlainListener{}
}

func (l *PlainListener) Listen(protocol, addr string) (net.Listener, error) {
	return net.Listen(protocol, addr)
}

// NewSecurityLayer returns a TLS listener when enableTLS is set and a plain one otherwise.
func NewSecurityLayer(enableTLS bool, certFileName, privateKeyFileName string) (model.SecurityLayer, error) {
	if !enableTLS {
		return NewPlainListener(), nil
	}
	return NewTLSListener(certFileName, privateKeyFileName)
}
