// Command homectl-watch prints resource values of a home-automation
// controller and follows their changes.
//
// Usage:
//
//	homectl-watch watch    -config homectl.yaml
//	homectl-watch get      -config homectl.yaml [-ids 101,102]
//	homectl-watch validate -config homectl.yaml
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "homectl-watch: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return errUsage
	}

	switch args[0] {
	case "watch":
		return watchCommand(ctx, args[1:], stdout, stderr)
	case "get":
		return getCommand(ctx, args[1:], stdout, stderr)
	case "validate":
		return validateCommand(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	default:
		usage(stderr)
		return errUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: homectl-watch <command> [flags]

commands:
  watch     subscribe to the configured resources and print every change
  get       print the current values of the configured resources
  validate  check the configuration file
`)
}
