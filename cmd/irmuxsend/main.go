package main

/*------------------------------------------------------------------
 *
 * Purpose:	Transmit a single button press: either a button looked up
 *		by name in a remote-config file, or a raw scancode against
 *		a fixed protocol name.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	irmux "github.com/doismellburning/irmux/src"
	"github.com/spf13/pflag"
)

func main() {
	var keymapFile = pflag.StringP("keymap", "k", "", "Remote/keymap config file.")
	var remoteName = pflag.StringP("remote", "r", "", "Remote name within the keymap file.")
	var protocol = pflag.StringP("protocol", "p", "", "Fixed protocol name instead of a configured remote (e.g. NEC, RC5, RC6).")
	var scancodeStr = pflag.StringP("scancode", "s", "", "Scancode for --protocol (decimal or 0x-prefixed hex).")
	var repeatCount = pflag.UintP("repeat", "n", 1, "Number of times to send a keymap button (--protocol sends once).")
	var device = pflag.StringP("device", "d", "", "Device node.")
	var driverName = pflag.StringP("driver", "D", "gpio", "Driver: gpio, serial, pty.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "irmuxsend - transmit an IR button press.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: irmuxsend [options] <button-name>\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	var edges []irmux.Duration
	var remote *irmux.Remote

	switch {
	case *protocol != "":
		if *scancodeStr == "" {
			fmt.Fprintln(os.Stderr, "irmuxsend: --scancode is required with --protocol")
			os.Exit(1)
		}
		sc, err := strconv.ParseUint(*scancodeStr, 0, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "irmuxsend: bad scancode: %s\n", err)
			os.Exit(1)
		}
		edges, err = irmux.EncodeFixed(*protocol, sc, -1)
		if err != nil {
			fmt.Fprintf(os.Stderr, "irmuxsend: encode failed: %s\n", err)
			os.Exit(1)
		}
		remote = &irmux.Remote{Freq: 38000, DutyCycle: 50}

	case *keymapFile != "" && pflag.NArg() == 1:
		db, err := irmux.ParseConfig(*keymapFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "irmuxsend: failed to parse %s: %s\n", *keymapFile, err)
			os.Exit(1)
		}
		if *remoteName == "" {
			fmt.Fprintln(os.Stderr, "irmuxsend: --remote is required with --keymap")
			os.Exit(1)
		}
		remote = db.Get(*remoteName)
		if remote == nil {
			fmt.Fprintf(os.Stderr, "irmuxsend: unknown remote %q\n", *remoteName)
			os.Exit(1)
		}
		button := pflag.Arg(0)
		code := findButton(remote, button)
		if code == nil {
			fmt.Fprintf(os.Stderr, "irmuxsend: unknown button %q on remote %q\n", button, *remoteName)
			os.Exit(1)
		}
		if *repeatCount > 0 {
			edges, err = irmux.EncodeCode(remote, code, uint32(*repeatCount-1))
			if err != nil {
				fmt.Fprintf(os.Stderr, "irmuxsend: encode failed: %s\n", err)
				os.Exit(1)
			}
		}

	default:
		pflag.Usage()
		os.Exit(1)
	}

	driver, closeDriver, err := openTxDriver(*driverName, *device)
	if err != nil {
		fmt.Fprintf(os.Stderr, "irmuxsend: failed to open driver: %s\n", err)
		os.Exit(1)
	}
	defer closeDriver()

	if remote == nil {
		remote = &irmux.Remote{Freq: 38000, DutyCycle: 50}
	}
	if err := driver.SendFunc(remote, edges); err != nil {
		fmt.Fprintf(os.Stderr, "irmuxsend: send failed: %s\n", err)
		os.Exit(1)
	}
}

func findButton(r *irmux.Remote, name string) *irmux.IrNcode {
	for _, c := range r.Codes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func openTxDriver(name, device string) (irmux.Driver, func(), error) {
	switch name {
	case "serial":
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
		log.Info("pty slave", "path", d.SlavePath())
		return d, func() { d.Close() }, nil
	default:
		chip := device
		if chip == "" {
			chip = "gpiochip0"
		}
		d, err := irmux.NewGPIODriver(chip, -1, 0)
		if err != nil {
			return nil, nil, err
		}
		return d, func() { d.Close() }, nil
	}
}
