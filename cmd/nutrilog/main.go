package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/nutrilog/internal/app"
	"github.com/dmitrijs2005/nutrilog/internal/common"
	"github.com/dmitrijs2005/nutrilog/internal/config"
	"github.com/dmitrijs2005/nutrilog/internal/flagx"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	a, err := app.New(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
	}

	args := flagx.Positional(os.Args[1:], config.ValueFlags)
	err = a.Exec(ctx, args, os.Stdout)
	_ = a.Close()

	if err != nil {
		fmt.Fprintln(os.Stderr, common.UserMessage(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
