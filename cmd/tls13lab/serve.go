package main

import (
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/silverreef/tls13lab/internal/config"
	"github.com/silverreef/tls13lab/internal/logging"
	"github.com/silverreef/tls13lab/tls13"
)

// newServeCmd builds the `serve` subcommand: bind --addr/--certFile/
// --keyFile/--logLevel/--handshakeTimeout to v, read the certificate and
// key files, and run the accept loop (one goroutine per accepted
// connection).
func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept TLS 1.3 connections and run the handshake engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().String("addr", config.Defaults().Addr, "listen address")
	cmd.Flags().String("certFile", "", "path to a DER-encoded X.509 certificate")
	cmd.Flags().String("keyFile", "", "path to a DER-encoded PKCS#8 RSA private key")
	cmd.Flags().String("logLevel", config.Defaults().LogLevel, "debug, info, warn, or error")
	cmd.Flags().Duration("handshakeTimeout", config.Defaults().HandshakeTimeout, "per-connection handshake deadline")
	return cmd
}

func runServe(cfg config.Config) error {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	certDER, err := os.ReadFile(cfg.CertFile)
	if err != nil {
		return err
	}
	keyDER, err := os.ReadFile(cfg.KeyFile)
	if err != nil {
		return err
	}

	srv, err := tls13.NewServer(certDER, keyDER, tls13.WithLogger(sugar))
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	defer listener.Close()
	sugar.Infow("listening", "addr", cfg.Addr)

	for {
		raw, err := listener.Accept()
		if err != nil {
			sugar.Errorw("accept failed", "error", err)
			continue
		}
		go handleConnection(srv, raw, cfg, sugar)
	}
}

// handleConnection drives one connection's handshake and, once CONNECTED,
// echoes application data back to the client — a placeholder workload since
// post-handshake application protocols are out of scope.
func handleConnection(srv *tls13.Server, raw net.Conn, cfg config.Config, logger *zap.SugaredLogger) {
	defer raw.Close()
	_ = raw.SetDeadline(time.Now().Add(cfg.HandshakeTimeout))

	conn, err := srv.Handshake(raw)
	if err != nil {
		logger.Warnw("handshake failed", "remote", raw.RemoteAddr(), "error", err)
		return
	}
	_ = raw.SetDeadline(time.Time{})
	defer conn.Close()

	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		if _, err := conn.Write(buf[:n]); err != nil {
			return
		}
	}
}
