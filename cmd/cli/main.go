package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/studyvault/internal/client/cli"
	"github.com/dmitrijs2005/studyvault/internal/server"
	"github.com/dmitrijs2005/studyvault/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}
	defer app.Close()

	cli.NewApp(app.Services, os.Stdin, os.Stdout).Run(ctx)

}
