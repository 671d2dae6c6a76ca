package cli

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/pixelthreat/internal/directions"
	"github.com/danielpatrickdp/pixelthreat/internal/logger"
)

func serveMarginsCmd(root *rootOptions) *cobra.Command {
	var addr, dirFile string

	c := &cobra.Command{
		Use:   "serve-margins",
		Short: "Serve a fixed set of unsafe directions over gRPC",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := root.open()
			if err != nil {
				return err
			}
			defer s.close()

			f, err := directions.LoadFile(dirFile)
			if err != nil {
				return err
			}

			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", addr, err)
			}

			srv := grpc.NewServer()
			directions.RegisterStaticService(srv, f.Directions)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				srv.GracefulStop()
			}()

			logger.L().Info("margins.listening",
				"addr", lis.Addr().String(),
				"directions", len(f.Directions),
				"dimension", f.Dimension,
			)
			fmt.Fprintf(cmd.OutOrStdout(), "serving %d direction(s) of dimension %d on %s\n",
				len(f.Directions), f.Dimension, lis.Addr())
			return serve(ctx, srv, lis)
		},
	}
	c.Flags().StringVar(&addr, "addr", ":50061", "Listen address")
	c.Flags().StringVar(&dirFile, "directions", "", "YAML file of unsafe directions (required)")
	_ = c.MarkFlagRequired("directions")
	return c
}

func serve(ctx context.Context, srv *grpc.Server, lis net.Listener) error {
	if err := srv.Serve(lis); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
