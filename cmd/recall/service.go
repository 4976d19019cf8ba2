package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/flemzord/recall/internal/config"
)

// program adapts the daemon loop to the service manager lifecycle.
type program struct {
	cfg    *config.Config
	logger *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// Start implements service.Interface. It must not block.
func (p *program) Start(service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		if err := runDaemon(ctx, p.cfg, p.logger); err != nil {
			p.logger.Error("service: daemon exited", "error", err)
		}
	}()
	return nil
}

// Stop implements service.Interface.
func (p *program) Stop(service.Service) error {
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}
	return nil
}

func newService(cmd *cobra.Command, prg *program) (service.Service, error) {
	cfgPath, _ := cmd.Flags().GetString("config")

	svcConfig := &service.Config{
		Name:        "recall",
		DisplayName: "recall memory daemon",
		Description: "Periodic extraction and status endpoint for the recall conversation memory.",
		Arguments:   []string{"service", "run"},
	}
	if cfgPath != "" {
		svcConfig.Arguments = append(svcConfig.Arguments, "--config", cfgPath)
	}
	return service.New(prg, svcConfig)
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage recall as a system service",
	}

	for _, action := range []string{"install", "uninstall", "start", "stop"} {
		cmd.AddCommand(&cobra.Command{
			Use:   action,
			Short: fmt.Sprintf("%s the system service", action),
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, err := newService(cmd, &program{})
				if err != nil {
					return err
				}
				if err := service.Control(svc, cmd.Use); err != nil {
					return err
				}
				fmt.Printf("Service %s: done\n", cmd.Use)
				return nil
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the daemon under the service manager",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			prg := &program{cfg: cfg, logger: newLogger(cmd)}
			svc, err := newService(cmd, prg)
			if err != nil {
				return err
			}
			return svc.Run()
		},
	})

	return cmd
}
