package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"modelviz.dev/modelviz/internal/cmd/shared"
	"modelviz.dev/modelviz/internal/config"
	"modelviz.dev/modelviz/introspect"
	"modelviz.dev/modelviz/visualizer"
)

const (
	FlagAddr            = "addr"
	FlagPath            = "path"
	FlagTitle           = "title"
	FlagUIDir           = "ui-dir"
	FlagUIArchive       = "ui-archive"
	FlagShutdownTimeout = "shutdown-timeout"

	DefaultShutdownTimeout = 5 * time.Second
)

// OutputFormat is the line printed once the server listens.
var OutputFormat = "serving %s at http://%s%s\n"

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the model visualizer",
		Long: `Serve the model visualizer over HTTP.

The models and their fixture documents are read from the configuration file.
Flags override the corresponding settings of the file. The server stops
gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		Example: `  # Serve the models of a configuration under /visualizer.
  modelviz serve --config modelviz.yaml --path /visualizer

  # Serve a custom UI build on a random port.
  modelviz serve --config modelviz.yaml --addr 127.0.0.1:0 --ui-dir ./ui/dist
`,
		RunE:              Serve,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	cmd.Flags().String(FlagAddr, config.DefaultAddr, "address to listen on")
	cmd.Flags().String(FlagPath, config.DefaultPath, "path to mount the visualizer under")
	cmd.Flags().String(FlagTitle, visualizer.DefaultTitle, "title shown in the UI")
	cmd.Flags().String(FlagUIDir, "", "directory containing the UI build")
	cmd.Flags().String(FlagUIArchive, "", "tar archive containing the UI build")
	cmd.Flags().Duration(FlagShutdownTimeout, DefaultShutdownTimeout, "time to wait for open requests on shutdown")
	return cmd
}

func Serve(cmd *cobra.Command, _ []string) error {
	cfg, err := shared.GetConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration(FlagShutdownTimeout)
	if err != nil {
		return fmt.Errorf("getting shutdown-timeout flag failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := shared.GetRegistry(cmd, cfg)
	if err != nil {
		return err
	}
	handler, basePath, err := newHandler(registry, cfg)
	if err != nil {
		return err
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}
	return Run(ctx, listener, handler, timeout, func(addr string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), OutputFormat, cfg.Title, addr, basePath)
		return err
	})
}

// applyFlags overrides the configuration with the flags set on cmd.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	for flag, target := range map[string]*string{
		FlagAddr:      &cfg.Addr,
		FlagPath:      &cfg.Path,
		FlagTitle:     &cfg.Title,
		FlagUIDir:     &cfg.UI.Dir,
		FlagUIArchive: &cfg.UI.Archive,
	} {
		value, err := cmd.Flags().GetString(flag)
		if err != nil {
			return fmt.Errorf("getting %s flag failed: %w", flag, err)
		}
		if cmd.Flags().Changed(flag) || *target == "" {
			*target = value
		}
	}
	return nil
}

// newHandler mounts the visualizer for registry under the configured path
// next to a health endpoint.
func newHandler(registry introspect.Registry, cfg *config.Config) (http.Handler, string, error) {
	v, err := visualizer.New(registry,
		visualizer.WithPath(cfg.Path),
		visualizer.WithTitle(cfg.Title),
		visualizer.WithUIDir(cfg.UI.Dir),
		visualizer.WithUIArchive(cfg.UI.Archive),
		visualizer.WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, "", fmt.Errorf("could not create visualizer: %w", err)
	}
	slog.Info("serving ui", slog.String("realm", "serve"), slog.String("source", v.UIOrigin()))

	base := v.BasePath()
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthz)
	mux.Handle(base, v)
	if base != "/" {
		mux.Handle(strings.TrimSuffix(base, "/"), v)
		mux.Handle("GET /{$}", http.RedirectHandler(base, http.StatusFound))
	}
	return mux, base, nil
}

func healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// Run serves handler on listener until ctx is done, then shuts the server
// down, waiting at most timeout for open requests. ready is called with the
// listen address once the server accepts connections.
func Run(ctx context.Context, listener net.Listener, handler http.Handler, timeout time.Duration, ready func(addr string) error) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		ErrorLog: slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egctx.Done()
		slog.Info("shutting down", slog.String("realm", "serve"))
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Join(fmt.Errorf("graceful shutdown failed: %w", err), server.Close())
		}
		return nil
	})
	if ready != nil {
		if err := ready(listener.Addr().String()); err != nil {
			slog.Warn("could not report listen address", slog.String("error", err.Error()))
		}
	}
	return eg.Wait()
}
