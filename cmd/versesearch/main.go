// Command versesearch is a multilingual verse search service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/versesearch/internal/adapters/driven/config/file"
	"github.com/custodia-labs/versesearch/internal/adapters/driving/cli"
	"github.com/custodia-labs/versesearch/internal/app"
)

// version is set at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetVersion(version)
	cli.SetBuilder(build)

	err := cli.Execute(ctx)
	if cerr := cli.Shutdown(); cerr != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", cerr)
	}
	stop()

	if err != nil {
		os.Exit(1)
	}
}

func build(ctx context.Context, cfg file.Config) (*cli.Services, error) {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &cli.Services{
		Search:    a.Search,
		Ingest:    a.Ingest,
		Index:     a.Index,
		Health:    a.Health,
		Locks:     a.Locks,
		IndexName: a.IndexName,
		Close:     a.Close,
	}, nil
}
