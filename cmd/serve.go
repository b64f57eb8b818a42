package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pressbot/internal/advertise"
	"pressbot/internal/config"
	"pressbot/internal/daemon"
	"pressbot/internal/device"
	"pressbot/internal/handlers"
	"pressbot/internal/logger"
	"pressbot/internal/protocol"
	"pressbot/internal/repository"
	"pressbot/internal/repository/db"
	"pressbot/internal/server"
	"pressbot/internal/service"
	"pressbot/internal/session"
	"pressbot/internal/transport"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Listen for companion connections and drive the actuator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

// serve wires the daemon from cfg and blocks until a fatal fault or a
// termination signal. A signal is a clean exit.
func serve(ctx context.Context, cfg config.Config) error {
	log, closeLog, err := logger.New(logger.Config{Level: cfg.Log.Level, Dir: cfg.Log.Dir, Prefix: "pressbot"})
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()
	if p := log.Path(); p != "" {
		log.Infow("log_file_opened", "path", p)
	}

	driver, err := openDriver(cfg.Device, log)
	if err != nil {
		log.Errorw("device_open_failed", "err", err)
		return err
	}
	act := device.NewActuator(driver, device.Config{
		ActuatorPin:  cfg.Device.ActuatorPin,
		IndicatorPin: cfg.Device.IndicatorPin,
		Profile: device.Profile{
			Press:     cfg.Device.PressDuration,
			ResetHold: cfg.Device.ResetHold,
			ResetGap:  cfg.Device.ResetGap,
		},
	})
	defer func() {
		if cerr := act.Close(); cerr != nil {
			log.Warnw("device_close_failed", "err", cerr)
		}
	}()

	adv, closeAdv, err := openAdvertiser(cfg.Advertise, log)
	if err != nil {
		log.Errorw("advertise_open_failed", "backend", cfg.Advertise.Backend, "err", err)
		return err
	}
	defer closeAdv()

	var (
		repos   *repository.Repository
		journal daemon.Journal
	)
	if cfg.DB.Path != "" {
		conn, err := db.InitDB(cfg.DB.Path)
		if err != nil {
			log.Errorw("db_open_failed", "path", cfg.DB.Path, "err", err)
			return err
		}
		defer closeDB(conn, log)
		repos = repository.NewRepository(conn)
		journal = repos.Sessions
	}

	runner := session.NewRunner(session.Config{
		Parser: protocol.NewParser(protocol.Options{
			TrimSpace:       cfg.Protocol.TrimSpace,
			CaseInsensitive: cfg.Protocol.CaseInsensitive,
		}),
		ReadTimeout: cfg.Session.ReadTimeout,
		Ack:         cfg.Protocol.Ack,
	}, log)

	loop := daemon.New(daemon.Options{
		Opener:       openerFor(cfg.Transport),
		Advertiser:   adv,
		Policy:       advertise.Policy(cfg.Advertise.Policy),
		Backoff:      cfg.Advertise.Backoff,
		Actuator:     act,
		Runner:       runner,
		Journal:      journal,
		Log:          log,
		Mode:         daemon.ListenMode(cfg.Transport.Mode),
		ServiceName:  cfg.Advertise.Name,
		StartupPress: cfg.Device.StartupPress,
	})

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if cfg.HTTP.Enabled {
		services := service.NewService(repos, service.Deps{
			Trigger: act,
			State:   loop,
			Auth:    service.AuthConfig{SigningKey: cfg.HTTP.SigningKey, TokenTTL: cfg.HTTP.TokenTTL},
			Log:     log,
			OnFault: func(err error) { cancel(err) },
		})
		api := handlers.NewHandler(services, log, handlers.WithStateInterval(cfg.HTTP.StateEvery))
		srv := &server.Server{}
		go func() {
			log.Infow("http_listening", "port", cfg.HTTP.Port)
			if err := srv.Run(cfg.HTTP.Port, api.InitRoutes()); err != nil {
				log.Errorw("http_server_failed", "err", err)
				cancel(fmt.Errorf("http server: %w", err))
			}
		}()
		defer shutdownHTTP(srv, log)
	}

	err = loop.Run(ctx)
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func openDriver(cfg config.Device, log *logger.Logger) (device.Driver, error) {
	if cfg.Driver == "sim" {
		log.Warnw("device_simulated", "actuator_pin", cfg.ActuatorPin, "indicator_pin", cfg.IndicatorPin)
		return device.NewSimDriver(nil), nil
	}
	d, err := device.NewChipDriver(cfg.Chip, []int{cfg.ActuatorPin, cfg.IndicatorPin}, cfg.ActiveLow)
	if err != nil {
		return nil, err
	}
	log.Infow("device_opened", "chip", cfg.Chip, "actuator_pin", cfg.ActuatorPin, "indicator_pin", cfg.IndicatorPin)
	return d, nil
}

func openerFor(cfg config.Transport) transport.Opener {
	if cfg.Kind == transport.KindTCP {
		return transport.TCPOpener{Address: cfg.Address}
	}
	return transport.RFCOMMOpener{Channel: cfg.Channel, Backlog: cfg.Backlog}
}

func openAdvertiser(cfg config.Advertise, log *logger.Logger) (advertise.Advertiser, func(), error) {
	switch cfg.Backend {
	case "bluez":
		b := advertise.NewBluezAdvertiser(log)
		return b, func() {
			if err := b.Close(); err != nil {
				log.Warnw("advertise_close_failed", "err", err)
			}
		}, nil
	case "mdns":
		return advertise.NewMDNSAdvertiser(cfg.Interface), func() {}, nil
	case "none":
		return advertise.Noop{}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown advertise backend %q", cfg.Backend)
	}
}

func closeDB(conn *sql.DB, log *logger.Logger) {
	if err := conn.Close(); err != nil {
		log.Warnw("db_close_failed", "err", err)
	}
}

func shutdownHTTP(srv *server.Server, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warnw("http_shutdown_failed", "err", err)
	}
}
