package main

/*------------------------------------------------------------------
 *
 * Purpose:	Small inspection/discovery client: find a running irmuxd on
 *		the LAN, or list the remotes/buttons a keymap file defines.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"os"
	"time"

	irmux "github.com/doismellburning/irmux/src"
	"github.com/spf13/pflag"
)

func main() {
	var discover = pflag.BoolP("discover", "D", false, "Browse mDNS for a running irmuxd and print its address.")
	var keymapFile = pflag.StringP("keymap", "k", "", "List remotes and buttons defined in this config file.")
	var timeout = pflag.DurationP("timeout", "t", 3*time.Second, "Discovery timeout.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "irmuxctl - inspect remotes and discover irmuxd instances.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: irmuxctl [options]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	switch {
	case *discover:
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()
		addr, err := irmux.DiscoverDaemon(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "irmuxctl: discovery failed: %s\n", err)
			os.Exit(1)
		}
		fmt.Println(addr)

	case *keymapFile != "":
		db, err := irmux.ParseConfig(*keymapFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "irmuxctl: failed to parse %s: %s\n", *keymapFile, err)
			os.Exit(1)
		}
		for _, r := range db.All() {
			fmt.Printf("%s:\n", r.Name)
			for _, c := range r.Codes {
				fmt.Printf("  %s\n", c.Name)
			}
		}

	default:
		pflag.Usage()
		os.Exit(1)
	}
}
