// Command officepdf converts office documents to PDF from the command
// line, a terminal UI or an MCP client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/officepdf/internal/adapters/driving/cli"
	"github.com/custodia-labs/officepdf/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, bootstrap)
	stop()
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
