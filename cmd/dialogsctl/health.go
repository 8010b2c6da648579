package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/fatih/color"
	"github.com/matheus3301/dialogs/internal/daemon"
	"github.com/matheus3301/dialogs/internal/lock"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func addHealth(topLevel *cobra.Command, g *globalOptions) {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check whether the account's daemon is serving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.paths()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			st, err := probe(ctx, p.Socket())
			if err != nil {
				owner, lerr := lock.ReadOwner(p.Dir())
				if errors.Is(lerr, fs.ErrNotExist) {
					return fmt.Errorf("no daemon running for account %q", p.Name)
				}
				if lerr == nil {
					return fmt.Errorf("daemon PID %d holds account %q since %s but does not answer: %w",
						owner.PID, p.Name, owner.Since.Local().Format(time.Kitchen), err)
				}
				return fmt.Errorf("daemon for account %q not reachable: %w", p.Name, err)
			}
			if g.json {
				return outputJSON(map[string]string{"account": p.Name, "status": st.String()})
			}
			c := color.New(color.FgGreen)
			if st != healthpb.HealthCheckResponse_SERVING {
				c = color.New(color.FgYellow)
			}
			_, _ = fmt.Fprintf(color.Output, "%s: %s\n", p.Name, c.Sprint(st))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "how long to wait for the daemon")
	topLevel.AddCommand(cmd)
}

// probe asks the daemon's health service for its status.
func probe(ctx context.Context, socketPath string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	defer func() { _ = conn.Close() }()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: daemon.ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.Status, nil
}
