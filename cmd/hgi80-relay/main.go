// hgi80-relay reads HGI80 gateway telegrams from serial port and forwards zone temperatures.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/daemon"
	"github.com/heatlink/hgi80/internal/config"
	"github.com/heatlink/hgi80/internal/forward"
	"github.com/heatlink/hgi80/internal/gateway"
	"github.com/heatlink/hgi80/internal/relay"
	"github.com/heatlink/hgi80/log2"
	"github.com/juju/errors"
	"github.com/mattn/go-isatty"
)

var log = log2.NewStderr(log2.LDebug)

func main() {
	flagConfig := flag.String("config", "", "path to hcl config file")
	flagDevice := flag.String("device", "", "serial device, overrides serial.device")
	flag.StringVar(flagDevice, "usb", "", "alias for -device")
	flagEndpoint := flag.String("endpoint", "", "collector url, overrides forward.http_url")
	flagLogLevel := flag.String("log-level", "", "error|info|debug, overrides log.level")
	flag.Parse()

	logFlags := log2.LInteractiveFlags
	if sdnotify("start") || !isatty.IsTerminal(os.Stderr.Fd()) {
		// under systemd journal adds timestamps
		logFlags = log2.LServiceFlags
	}
	log.SetFlags(logFlags)

	cfg := config.Default()
	if *flagConfig != "" {
		var err error
		if cfg, err = config.Read(log, *flagConfig); err != nil {
			log.Fatal(errors.ErrorStack(err))
		}
	}
	if *flagDevice != "" {
		cfg.Serial.Device = *flagDevice
	}
	if *flagEndpoint != "" {
		cfg.Forward.HttpUrl = *flagEndpoint
	}
	if *flagLogLevel != "" {
		cfg.Log.Level = *flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(errors.ErrorStack(err))
	}

	var logCloser io.Closer
	log, logCloser = log2.NewFile(cfg.LogFile(), cfg.LogLevel())
	log.SetFlags(logFlags)
	defer logCloser.Close()

	if err := run(cfg); err != nil {
		log.Errorf("%s", errors.ErrorStack(err))
		logCloser.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	port, err := gateway.OpenSerial(cfg.GatewayOptions(), log)
	if err != nil {
		return errors.Annotate(err, "gateway")
	}
	defer port.Close()

	fwd, closeFwd, err := buildForwarder(cfg)
	if err != nil {
		return err
	}
	defer closeFwd()

	r := relay.Start(ctx, log, port, fwd, cfg.RelayConfig())
	sdnotify(daemon.SdNotifyReady)
	log.Infof("relay running device=%s signal_max=%d", cfg.Serial.Device, cfg.Relay.SignalMax)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	select {
	case s := <-sigCh:
		log.Infof("signal=%v stopping", s)
		sdnotify(daemon.SdNotifyStopping)
	case <-r.Done():
	}
	err = r.Stop()
	log.Infof("relay stopped %s rx_bytes=%s", r.Stats().String(), gateway.RxBytes.String())
	return errors.Annotate(err, "relay")
}

func buildForwarder(cfg *config.Config) (forward.Forwarder, func(), error) {
	var sinks forward.Multi
	closers := make([]func(), 0, 2)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Forward.HttpUrl != "" {
		sinks = append(sinks, forward.NewHTTP(cfg.Forward.HttpUrl, cfg.HTTPTimeout(), log))
	}
	if cfg.Forward.MqttBroker != "" {
		m, err := forward.NewMQTT(cfg.MQTTOptions(), log)
		if err != nil {
			return nil, nil, errors.Annotate(err, "forward mqtt")
		}
		sinks = append(sinks, m)
		closers = append(closers, m.Close)
	}

	var fwd forward.Forwarder = sinks
	if len(sinks) == 1 {
		fwd = sinks[0]
	}
	if cfg.Forward.QueuePath != "" {
		q, err := forward.NewQueue(cfg.Forward.QueuePath, fwd, log)
		if err != nil {
			closeAll()
			return nil, nil, errors.Annotate(err, "forward queue")
		}
		fwd = q
		closers = append(closers, func() {
			if err := q.Close(); err != nil {
				log.Error(err)
			}
		})
	}
	return fwd, closeAll, nil
}

func sdnotify(s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config hgi80.hcl] [-device /dev/ttyUSB0] [-endpoint http://collector/api]\n", os.Args[0])
		flag.PrintDefaults()
	}
}
