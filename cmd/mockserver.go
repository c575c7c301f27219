package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"studio-booking-cli/backendtest"
	"studio-booking-cli/model"
)

type demoAccount struct {
	email    string
	password string
	name     string
	role     model.Role
}

var demoAccounts = []demoAccount{
	{email: "customer@studio.test", password: "customer123", name: "Demo Customer", role: model.RoleCustomer},
	{email: "cashier@studio.test", password: "cashier123", name: "Front Desk", role: model.RoleCashier},
	{email: "admin@studio.test", password: "admin123", name: "Studio Admin", role: model.RoleAdmin},
}

func newMockServerCmd(env *environment) *cobra.Command {
	var (
		addr   string
		noSeed bool
	)

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run an in-memory booking backend for demos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logrus.New()
			log.SetOutput(env.errOut)
			log.SetLevel(env.cfg.LogLevel)
			gin.SetMode(gin.ReleaseMode)

			backend := backendtest.New(
				backendtest.WithSecret(env.cfg.MockSecret),
				backendtest.WithLogger(log),
			)
			if !noSeed {
				if err := seedDemo(backend); err != nil {
					return err
				}
			}

			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", addr, err)
			}
			return serveMock(cmd.Context(), env, log, backend, listener, !noSeed)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", env.cfg.MockAddr, "listen address")
	cmd.Flags().BoolVar(&noSeed, "empty", false, "start without demo studios and accounts")
	return cmd
}

func seedDemo(backend *backendtest.Server) error {
	backend.Seed()
	for _, acc := range demoAccounts {
		if _, _, err := backend.AddUser(acc.email, acc.password, acc.name, acc.role); err != nil {
			return fmt.Errorf("seed %s: %w", acc.email, err)
		}
	}
	return nil
}

// serveMock serves until ctx is cancelled, then shuts down gracefully.
func serveMock(ctx context.Context, env *environment, log logrus.FieldLogger, backend *backendtest.Server, listener net.Listener, seeded bool) error {
	srv := &http.Server{
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	url := fmt.Sprintf("http://%s%s", listener.Addr().String(), backendtest.APIPrefix)
	log.WithField("url", url).Info("mock backend listening")
	fmt.Fprintf(env.out, "Mock booking API on %s\n", url)
	fmt.Fprintf(env.out, "Point the client at it with BOOKING_API_URL=%s\n", url)
	if seeded {
		t := newTable(env.out)
		t.SetTitle("Demo accounts")
		t.AppendHeader(table.Row{"Email", "Password", "Role"})
		for _, acc := range demoAccounts {
			t.AppendRow(table.Row{acc.email, acc.password, acc.role})
		}
		t.Render()
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("mock backend shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
