// rhino-cli drives the bridge from a terminal: an interactive shell by
// default, plus one-shot subcommands for scripting.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/a01110946/RhinoMCP/internal/config"
	"github.com/a01110946/RhinoMCP/internal/logx"
	"github.com/a01110946/RhinoMCP/internal/shell"
	"github.com/a01110946/RhinoMCP/pkg/rhino"
)

func main() {
	var (
		cfgFile string
		addr    string
		client  *rhino.Client
		sh      *shell.Shell
	)

	root := &cobra.Command{
		Use:           "rhino-cli",
		Short:         "Interactive client for the RhinoMCP bridge",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			logx.Configure(cfg.LogLevel)
			if addr != "" {
				cfg.Client.Addr = addr
			}
			client = rhino.NewClient(cfg.Client.Addr)
			if cfg.Client.Timeout > 0 {
				client.SetTimeout(cfg.Client.Timeout)
			}
			if err := client.Connect(); err != nil {
				return err
			}
			sh = shell.New(client, os.Stdout)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if client != nil {
				client.Disconnect()
			}
		},
		RunE: func(*cobra.Command, []string) error {
			return sh.Run(os.Stdin)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default rhinomcp.yaml)")
	root.PersistentFlags().StringVar(&addr, "addr", "", "bridge address (overrides config)")

	// One-shot subcommands reuse the shell's parsing and printing so their
	// behavior matches the interactive loop exactly.
	oneShot := func(use, short string, minArgs int) *cobra.Command {
		name, _, _ := strings.Cut(use, " ")
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.MinimumNArgs(minArgs),
			Run: func(_ *cobra.Command, args []string) {
				sh.Execute(strings.TrimSpace(name + " " + strings.Join(args, " ")))
			},
		}
	}
	root.AddCommand(
		oneShot("ping", "Check connection and host info", 0),
		oneShot("refresh", "Redraw the host views", 0),
		oneShot("sphere <x> <y> <z> <radius>", "Create a sphere", 4),
		oneShot("curve <x,y,z> <x,y,z>...", "Create a curve through 2+ points", 2),
		oneShot("script <code>", "Run a script in the host's script engine", 1),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
