package main

/*------------------------------------------------------------------
 *
 * Purpose:	Feed a captured pulse/space signal through the decoder
 *		without hardware attached, using the in-memory FakeDriver.
 *		Input is whitespace-separated durations as in the signal
 *		lines of a remote-config's raw_codes section: a bare
 *		integer, pulse if even-indexed (0-based), space if
 *		odd-indexed. Tokens that are not integers are skipped.
 *
 *------------------------------------------------------------------*/

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	irmux "github.com/doismellburning/irmux/src"
	"github.com/spf13/pflag"
)

func main() {
	var keymapFile = pflag.StringP("keymap", "k", "", "Remote/keymap config file to decode against.")
	var inputFile = pflag.StringP("input", "i", "-", "File of whitespace-separated durations ('-' for stdin).")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "irmuxreplay - decode a captured signal without hardware.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: irmuxreplay -k remotes.conf [-i capture.txt]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help || *keymapFile == "" {
		pflag.Usage()
		os.Exit(1)
	}

	db, err := irmux.ParseConfig(*keymapFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "irmuxreplay: failed to parse %s: %s\n", *keymapFile, err)
		os.Exit(1)
	}

	in := os.Stdin
	if *inputFile != "-" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "irmuxreplay: %s\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	driver := irmux.NewFakeDriver(1, irmux.ModeMode2)
	scanner := bufio.NewScanner(in)
	scanner.Split(bufio.ScanWords)
	idx := 0
	for scanner.Scan() {
		v, err := strconv.ParseUint(scanner.Text(), 0, 32)
		if err != nil {
			continue
		}
		if idx%2 == 0 {
			driver.Push(irmux.PulseDuration(uint32(v)))
		} else {
			driver.Push(irmux.SpaceDuration(uint32(v)))
		}
		idx++
	}
	driver.PushEOF()

	ctx := irmux.NewContext(driver, log.InfoLevel, os.Stderr)
	for {
		line, err := irmux.DecodeAll(ctx, db)
		if err != nil {
			fmt.Fprintf(os.Stderr, "irmuxreplay: %s\n", err)
			os.Exit(1)
		}
		if line == "" {
			break
		}
		fmt.Print(line)
		if line == "0000000008000000 00 __EOF lirc\n" {
			break
		}
	}
}
