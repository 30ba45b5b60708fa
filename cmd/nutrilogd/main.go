package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/nutrilog/internal/app"
	"github.com/dmitrijs2005/nutrilog/internal/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	a, err := app.New(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}
	defer a.Close()

	a.Run(ctx)

}
