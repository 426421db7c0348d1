package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alpstack/mcpgate/internal/cmd"
	"github.com/alpstack/mcpgate/internal/config"
	"github.com/alpstack/mcpgate/internal/daemon"
	"github.com/alpstack/mcpgate/internal/flags"
)

// GatewayCmd should be used to represent the 'gateway' command.
type GatewayCmd struct {
	*cmd.BaseCmd
	Dev         bool
	Addr        string
	CORSEnabled bool
	CORSOrigins []string
	cfgLoader   config.Loader
}

// NewGatewayCmd creates a newly configured (Cobra) command.
func NewGatewayCmd(baseCmd *cmd.BaseCmd) (*cobra.Command, error) {
	c := &GatewayCmd{
		BaseCmd:   baseCmd,
		cfgLoader: &config.DefaultLoader{},
	}

	cobraCommand := &cobra.Command{
		Use:   "gateway [--dev] [--addr]",
		Short: "Launches an mcpgate gateway instance",
		Long:  "Launches an mcpgate gateway instance, which federates the configured MCP servers behind one HTTP API",
		RunE:  c.run,
	}

	cobraCommand.Flags().BoolVar(
		&c.Dev,
		"dev",
		false,
		"Run the gateway in development-focused mode",
	)

	cobraCommand.Flags().StringVar(
		&c.Addr,
		"addr",
		"0.0.0.0:8090",
		"Address for the gateway to bind (not applicable in --dev mode)",
	)

	cobraCommand.Flags().BoolVar(
		&c.CORSEnabled,
		"cors-enable",
		false,
		"Enable CORS headers on API responses",
	)

	cobraCommand.Flags().StringSliceVar(
		&c.CORSOrigins,
		"cors-origin",
		nil,
		"Origins allowed for CORS requests (repeatable)",
	)

	cobraCommand.MarkFlagsMutuallyExclusive("dev", "addr")

	return cobraCommand, nil
}

// run is configured (via NewGatewayCmd) to be called by the Cobra framework when the command is executed.
func (c *GatewayCmd) run(_ *cobra.Command, _ []string) error {
	logger, err := c.Logger()
	if err != nil {
		return err
	}

	addr := strings.TrimSpace(c.Addr)

	// Override address for dev mode.
	if c.Dev {
		devAddr := "localhost:8090"
		logger.Info("Development-focused mode", "addr", addr, "override", devAddr)
		addr = devAddr
	}

	apiOpts := []daemon.APIOption{
		daemon.WithCORSEnabled(c.CORSEnabled),
		daemon.WithCORSAllowOrigins(c.CORSOrigins),
	}

	d, err := daemon.NewDaemon(logger, c.cfgLoader, addr, apiOpts...)
	if err != nil {
		return fmt.Errorf("failed to create mcpgate gateway instance: %w", err)
	}

	// Create the signal handling context for the application.
	gatewayCtx, gatewayCtxCancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer gatewayCtxCancel()

	runErr := make(chan error, 1)
	go func() {
		if err := d.StartAndManage(gatewayCtx); err != nil && !errors.Is(err, context.Canceled) {
			runErr <- err
		}
		close(runErr)
	}()

	// Print --dev mode banner if required.
	if c.Dev {
		banner := fmt.Sprintf("mcpgate gateway running in 'dev' mode.\n\n"+
			"  Local API:\thttp://%s/api/v1\n"+
			"  OpenAPI UI:\thttp://%s/docs\n"+
			"  Config file:\t%s\n",
			addr, addr, flags.ConfigFile)

		if flags.LogPath != "" {
			banner += fmt.Sprintf("  Log file:\t%s => (%s)\n", flags.LogPath, flags.LogLevel)
		}

		banner += "\nPress Ctrl+C to stop.\n\n"
		fmt.Print(banner)
	}

	select {
	case <-gatewayCtx.Done():
		logger.Info("Shutting down gateway")
		err := <-runErr // Wait for cleanup and deferred logging.
		return err      // Graceful Ctrl+C / SIGTERM.
	case err := <-runErr:
		logger.Error("gateway exited with error", "error", err)
		return err // Propagate gateway failure.
	}
}
