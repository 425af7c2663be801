// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// conway-attach connects the local terminal to a running conway-term
// daemon, putting stdin into raw mode so single keystrokes reach the
// simulator immediately (the machine's commands are one byte each and
// unbuffered input is the whole point).
//
// Ctrl-C detaches locally; it is not forwarded to the daemon, which
// keeps running.
package main

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/ccattuto/tt07-conway-term/lib/version"
)

const detachByte = 0x03 // ctrl-c

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var address string

	flagSet := pflag.NewFlagSet("conway-attach", pflag.ContinueOnError)
	flagSet.StringVar(&address, "address", "127.0.0.1:7310", "daemon address to attach to")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("conway-attach")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	conn, err := net.Dial("tcp", address)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", address, err)
	}
	defer conn.Close()

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprintf(os.Stderr, "attached to %s (ctrl-c to detach)\r\n", address)
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("entering raw mode: %w", err)
		}
		defer term.Restore(fd, oldState)
	}

	// Daemon to terminal: copy until the connection drops.
	outDone := make(chan error, 1)
	go func() {
		_, err := io.Copy(os.Stdout, conn)
		outDone <- err
	}()

	// Terminal to daemon: byte at a time, intercepting the detach key.
	inDone := make(chan error, 1)
	go func() {
		var buf [1]byte
		for {
			n, err := os.Stdin.Read(buf[:])
			if n == 1 {
				if buf[0] == detachByte {
					inDone <- nil
					return
				}
				if _, err := conn.Write(buf[:1]); err != nil {
					inDone <- err
					return
				}
			}
			if err != nil {
				inDone <- err
				return
			}
		}
	}()

	select {
	case err := <-outDone:
		if err != nil && !errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("connection lost: %w", err)
		}
		fmt.Fprint(os.Stderr, "\r\nconnection closed by daemon\r\n")
		return nil
	case err := <-inDone:
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		fmt.Fprint(os.Stderr, "\r\ndetached\r\n")
		return nil
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `conway-attach — raw-terminal client for conway-term.

Keys are forwarded unmodified: any byte wakes the simulator, '0'
reseeds the board, '1' steps a generation, and space toggles autoplay.
Ctrl-C detaches without stopping the daemon.

Usage:
    conway-attach [flags]

Flags:
%s`, flagSet.FlagUsages())
}
