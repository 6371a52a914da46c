package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/omhauth/internal/admin"
	"github.com/dmitrijs2005/omhauth/internal/flagx"
	"github.com/dmitrijs2005/omhauth/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	args := flagx.StripArgs(os.Args[1:], config.Flags())

	app, err := admin.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx, args); err != nil {
		if errors.Is(err, admin.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		log.Fatalf("%v", err)
	}

}
