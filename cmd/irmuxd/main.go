package main

/*------------------------------------------------------------------
 *
 * Purpose:	Daemon: open a driver, load remote definitions, decode
 *		events continuously and report them on stdout and to an
 *		optional daily-rotating event log.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	irmux "github.com/doismellburning/irmux/src"
	"github.com/spf13/pflag"
)

func main() {
	var optsFile = pflag.StringP("options", "o", "/etc/irmux/irmuxd.yaml", "Daemon options file.")
	var keymapFile = pflag.StringP("keymap", "k", "", "Remote/keymap config file (overrides options file's keymap_paths).")
	var device = pflag.StringP("device", "d", "", "Device node (overrides options file).")
	var driverName = pflag.StringP("driver", "D", "", "Driver: gpio, serial, pty (overrides options file).")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "irmuxd - IR remote decoding daemon.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: irmuxd [options]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	opts, err := irmux.LoadDaemonOptions(*optsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "irmuxd: using default options (%s not loaded: %s)\n", *optsFile, err)
		opts = irmux.DefaultDaemonOptions()
	}
	if *device != "" {
		opts.Device = *device
	}
	if *driverName != "" {
		opts.Driver = *driverName
	}

	keymapPath := *keymapFile
	if keymapPath == "" && len(opts.KeymapPaths) > 0 {
		keymapPath = opts.KeymapPaths[0]
	}
	if keymapPath == "" {
		fmt.Fprintln(os.Stderr, "irmuxd: no keymap file configured")
		os.Exit(1)
	}

	level := log.InfoLevel
	if lvl, err := log.ParseLevel(opts.LogLevel); err == nil {
		level = lvl
	}
	startupLog := log.NewWithOptions(os.Stderr, log.Options{Level: level, ReportTimestamp: true})

	db, err := irmux.ParseConfigWithLogger(keymapPath, startupLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "irmuxd: failed to parse %s: %s\n", keymapPath, err)
		os.Exit(1)
	}

	driver, closeDriver, err := openDriver(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "irmuxd: failed to open driver %q: %s\n", opts.Driver, err)
		os.Exit(1)
	}
	defer closeDriver()

	ctx := irmux.NewContext(driver, level, os.Stderr)

	evlog, err := irmux.NewEventLog(opts.LogDir, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "irmuxd: failed to open event log: %s\n", err)
		os.Exit(1)
	}
	defer evlog.Close()

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if opts.Advertise {
		stop, err := irmux.AdvertiseDaemon(runCtx, "irmuxd", 8765)
		if err != nil {
			ctx.Log.Warn("mDNS advertise failed", "error", err)
		} else {
			defer stop()
		}
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		cancel()
	}()

	for {
		select {
		case <-runCtx.Done():
			return
		default:
		}

		line, res, err := irmux.DecodeAllResult(ctx, db)
		if err != nil {
			ctx.Log.Error("decode failed", "error", err)
			continue
		}
		if line == "" {
			continue
		}
		fmt.Print(line)
		if res != nil {
			ctx.Log.Info("decoded button press", "remote", res.Remote.Name, "button", res.Code.Name, "repeat", res.Repeat)
			if err := evlog.Write(res); err != nil {
				ctx.Log.Warn("event log write failed", "error", err)
			}
		}
	}
}

// openDriver resolves the configured driver name into a concrete Driver.
// For the serial driver an empty opts.Device is auto-discovered via udev;
// the gpio driver defaults to gpiochip0.
func openDriver(opts irmux.DaemonOptions) (irmux.Driver, func(), error) {
	switch opts.Driver {
	case "serial":
		device := opts.Device
		if device == "" {
			var err error
			device, err = irmux.DiscoverLircDevice()
			if err != nil {
				return nil, nil, err
			}
		}
		d, err := irmux.NewSerialDriver(device, 9600)
		if err != nil {
			return nil, nil, err
		}
		return d, func() { d.Close() }, nil

	case "pty":
		d, err := irmux.NewPtyDriver()
		if err != nil {
			return nil, nil, err
		}
		fmt.Fprintf(os.Stderr, "irmuxd: pty slave at %s\n", d.SlavePath())
		return d, func() { d.Close() }, nil

	case "gpio", "":
		chip := opts.Device
		if chip == "" {
			chip = "gpiochip0"
		}
		d, err := irmux.NewGPIODriver(chip, 0, -1)
		if err != nil {
			return nil, nil, err
		}
		return d, func() { d.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown driver %q", opts.Driver)
	}
}
