// Command medoc is the clinic staff client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vitemonmedoc/medoc/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, cli.StdStreams(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		stop()
		os.Exit(1)
	}
}
