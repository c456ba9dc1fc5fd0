// Command docmind indexes documents and answers questions about them.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/docmind/internal/adapters/driving/cli"
	"github.com/custodia-labs/docmind/internal/app"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func bootstrap(ctx context.Context, configPath string, withEngine bool) (*cli.Services, error) {
	container, err := app.New(app.Options{ConfigPath: configPath})
	if err != nil {
		return nil, err
	}

	settings, err := container.AppSettings()
	if err != nil {
		return nil, err
	}

	services := &cli.Services{
		Settings: container.Settings(),
		Server:   settings.Server,
		Close:    container.Close,
	}
	if !withEngine {
		return services, nil
	}

	if err := container.Open(ctx); err != nil {
		return nil, err
	}
	services.Document = container.Document
	services.Query = container.Query
	return services, nil
}
