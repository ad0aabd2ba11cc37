package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	gh "github.com/theapemachine/ghops/pkg/github"
	"github.com/theapemachine/ghops/pkg/service/sse"
	"github.com/theapemachine/ghops/pkg/tools"
)

var (
	transportFlag string
	addrFlag      string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the GitHub MCP tools",
		Long:  longServe,
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout := viper.GetDuration("github.timeout")
			if timeout == 0 {
				timeout = 30 * time.Second
			}

			gateway := gh.NewGateway(gh.WithTimeout(timeout))
			registry := tools.NewRegistry(gateway)
			broker := sse.NewMCPBroker(registry)

			switch transportFlag {
			case "stdio":
				return broker.ServeStdio()
			case "sse":
				addr := addrFlag
				if addr == "" {
					addr = viper.GetString("server.address")
				}

				log.Info("starting SSE server", "addr", addr)

				if err := broker.Start(addr); err != nil {
					log.Error("failed to start sse server", "error", err)
					return err
				}

				return nil
			default:
				return fmt.Errorf("unsupported transport: %s", transportFlag)
			}
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.PersistentFlags().StringVarP(
		&transportFlag, "transport", "t", "stdio", "Transport to serve on (stdio or sse)",
	)
	serveCmd.PersistentFlags().StringVarP(
		&addrFlag, "addr", "a", "", "Address for the SSE transport",
	)
}

var longServe = `
Serve the consolidated GitHub tools over MCP.

Examples:
  # Serve over stdio (the default).
  ghops serve

  # Serve over SSE.
  ghops serve --transport sse --addr 0.0.0.0:3210
`
