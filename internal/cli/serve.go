// serve.go implements "chatdock serve", a local development backend.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/berth-dev/chatdock/internal/backend"
	"github.com/berth-dev/chatdock/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local chatbot backend",
	Long: `Serve POST /chatbot/message, POST /chatbot/reset and the health checks
on the configured address so the client has something to talk to. The
conversation is a canned clinic greeting flow kept in memory.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var addrFlag string

const shutdownTimeout = 10 * time.Second

func init() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if addrFlag != "" {
		addr = addrFlag
	}

	newZap := zap.NewProduction
	if debug {
		newZap = zap.NewDevelopment
	}
	logger, err := newZap()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	conversations := backend.NewConversations(cfg.Server.ClinicName, backend.DefaultSpecialties)
	srv := &http.Server{
		Handler:           backend.NewRouter(backend.New(conversations, logger)),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("backend listening", zap.String("addr", ln.Addr().String()))
	return runServer(ctx, srv, ln)
}

// runServer serves on ln until ctx is done, then shuts srv down gracefully.
func runServer(ctx context.Context, srv *http.Server, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
