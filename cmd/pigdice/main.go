package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run the Telegram webhook server"`
	Simulate SimulateCmd      `cmd:"" help:"Simulate games between hold-at-K bots"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pigdice"),
		kong.Description("Pig dice game bot for Telegram group chats"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
