// File: cmd/rdpdial/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// rdpdial is a connectivity probe for the hioload-rdp transport core: it
// establishes a transport to the given target (hostname, literal IP, local
// socket path or vsock address), reports the negotiated endpoints and
// optionally serves Prometheus metrics while piping data.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
	"github.com/momentics/hioload-rdp/api"
	"github.com/momentics/hioload-rdp/facade"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of rdpdial",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rdpdial v%s\n", version)
	},
}

var rootCmd = &cobra.Command{
	Use:   "rdpdial <host> <port>",
	Short: "probe and exercise hioload-rdp transport establishment",
	Long: `rdpdial dials a remote-desktop transport target and reports the result.

Targets: a DNS hostname or literal IP, a '/path' local domain socket,
'vsock://<cid>' for hypervisor sockets, or '|' with the port naming an
already open descriptor.`,
	Args: cobra.ExactArgs(2),
	RunE: runDial,
}

func init() {
	flags := rootCmd.Flags()
	flags.Int("timeout", 15000, "connect timeout in milliseconds (0 = no timeout)")
	flags.Bool("prefer-ipv6", false, "prefer IPv6 results over IPv4")
	flags.Uint32("force-ipvx", 0, "force IP version: 0, 4 or 6")
	flags.Bool("keepalive", true, "enable TCP keep-alive tuning")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address")
	flags.Bool("pipe", false, "pipe stdin/stdout over the connection after dialing")
	flags.StringSlice("alternate", nil, "alternate target hosts for racing")
	flags.String("log-level", "info", "log level: trace, debug, info, warn, error")

	_ = viper.BindPFlags(flags)
	viper.SetEnvPrefix("RDPDIAL")
	viper.AutomaticEnv()

	rootCmd.AddCommand(versionCmd)
}

func runDial(cmd *cobra.Command, args []string) error {
	host := args[0]
	var port int
	if _, err := fmt.Sscanf(args[1], "%d", &port); err != nil {
		return fmt.Errorf("invalid port %q: %w", args[1], err)
	}

	log := hclog.New(&hclog.LoggerOptions{
		Name:  "rdpdial",
		Level: hclog.LevelFromString(viper.GetString("log-level")),
	})

	settings := api.DefaultSettings()
	settings.TCPKeepAlive = viper.GetBool("keepalive")
	settings.PreferIPv6OverIPv4 = viper.GetBool("prefer-ipv6")
	settings.ForceIPvX = viper.GetUint32("force-ipvx")
	settings.TargetNetAddresses = viper.GetStringSlice("alternate")

	conn, err := facade.New(&facade.Config{
		Settings:      settings,
		DialTimeoutMs: viper.GetInt("timeout"),
		Logger:        log,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	if addr := viper.GetString("metrics-addr"); addr != "" {
		go serveMetrics(addr, log)
	}

	start := time.Now()
	layer, err := conn.Dial(context.Background(), host, port)
	if err != nil {
		log.Error("dial failed", "target", host, "code", conn.LastError().String(), "error", err)
		return err
	}
	defer layer.Close()

	clientAddr, ipv6 := conn.ClientAddress()
	log.Info("connected", "target", host, "port", port,
		"client_address", clientAddr, "ipv6", ipv6, "elapsed", time.Since(start))

	if viper.GetBool("pipe") {
		return pipe(conn, layer)
	}
	return nil
}

// pipe shuttles bytes between stdin/stdout and the transport layer using
// readiness waits, the way a protocol loop would.
func pipe(conn *facade.Connector, layer api.TransportLayer) error {
	errCh := make(chan error, 2)

	go func() {
		buf := conn.BufferPool().GetBuffer()
		defer conn.BufferPool().PutBuffer(buf)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				errCh <- err
				return
			}
			out := buf[:n]
			for len(out) > 0 {
				w, werr := layer.Write(out)
				if werr == api.ErrWouldBlock {
					if _, werr = layer.Wait(true, 0); werr != nil {
						errCh <- werr
						return
					}
					continue
				}
				if werr != nil {
					errCh <- werr
					return
				}
				out = out[w:]
			}
		}
	}()

	go func() {
		buf := conn.BufferPool().GetBuffer()
		defer conn.BufferPool().PutBuffer(buf)
		for {
			n, err := layer.Read(buf)
			if err == api.ErrWouldBlock {
				if _, err = layer.Wait(false, 0); err != nil {
					errCh <- err
					return
				}
				continue
			}
			if err != nil {
				errCh <- err
				return
			}
			if _, err := os.Stdout.Write(buf[:n]); err != nil {
				errCh <- err
				return
			}
		}
	}()

	err := <-errCh
	if err == io.EOF {
		return nil
	}
	return err
}

func serveMetrics(addr string, log hclog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})
	log.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server", "error", err)
	}
}

func main() {
	// Local overrides for development; absence of the file is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
