package main

import (
	"context"
	"fmt"
	"os"

	"github.com/svanichkin/mycord/client"
	"github.com/svanichkin/mycord/conf"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "[mycord] %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cmd := conf.NewRootCommand(client.Run)
	cmd.Version = appVersion()
	return cmd.ExecuteContext(context.Background())
}
