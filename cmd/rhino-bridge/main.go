// rhino-bridge runs the command executor as a standalone daemon against
// the in-process memdoc host. A deployment embedded next to the real CAD
// application wires its own host.Host into bridge.NewDispatcher instead.
package main

import (
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/a01110946/RhinoMCP/internal/audit"
	"github.com/a01110946/RhinoMCP/internal/bridge"
	"github.com/a01110946/RhinoMCP/internal/config"
	"github.com/a01110946/RhinoMCP/internal/host/memdoc"
	"github.com/a01110946/RhinoMCP/internal/logx"
	"github.com/a01110946/RhinoMCP/internal/transport/ws"
)

func main() {
	var cfgFile string

	root := &cobra.Command{
		Use:           "rhino-bridge",
		Short:         "Command bridge for the RhinoMCP protocol",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default rhinomcp.yaml)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Listen for command connections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Bridge.TCPAddr = addr
			}
			if wsAddr, _ := cmd.Flags().GetString("ws-addr"); wsAddr != "" {
				cfg.Bridge.WSAddr = wsAddr
			}
			if auditPath, _ := cmd.Flags().GetString("audit"); auditPath != "" {
				cfg.Bridge.AuditPath = auditPath
			}
			logx.Configure(cfg.LogLevel)
			return run(cfg)
		},
	}
	serve.Flags().String("addr", "", "TCP listen address (overrides config)")
	serve.Flags().String("ws-addr", "", "WebSocket listen address (overrides config)")
	serve.Flags().String("audit", "", "SQLite audit database path (overrides config)")
	root.AddCommand(serve)

	if err := root.Execute(); err != nil {
		logx.Log.Error().Err(err).Msg("bridge failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// 1. Host session. The standalone daemon starts with an open document
	// so geometry commands work out of the box.
	h := memdoc.New(cfg.Bridge.HostVersion)
	h.OpenDoc()

	// 2. Audit trail.
	var rec audit.Recorder = audit.Nop{}
	if cfg.Bridge.AuditPath != "" {
		logx.Log.Info().Str("path", cfg.Bridge.AuditPath).Msg("initializing audit database")
		sqliteRec, err := audit.OpenSQLite(cfg.Bridge.AuditPath)
		if err != nil {
			return err
		}
		defer sqliteRec.Close()
		rec = sqliteRec
	}

	// 3. Dispatcher and transports.
	disp := bridge.NewDispatcher(h, rec)

	if cfg.Bridge.WSAddr != "" {
		wsSrv := ws.NewServer(disp)
		go func() {
			logx.Log.Info().Str("addr", cfg.Bridge.WSAddr).Msg("websocket transport listening")
			if err := http.ListenAndServe(cfg.Bridge.WSAddr, wsSrv.Routes()); err != nil {
				logx.Log.Error().Err(err).Msg("websocket transport failed")
			}
		}()
	}

	srv := bridge.NewServer(cfg.Bridge.TCPAddr, disp)
	if err := srv.Listen(); err != nil {
		// Port already in use is fatal; report, do not retry.
		return err
	}
	return srv.Serve()
}
