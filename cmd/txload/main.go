package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcuadros/go-defaults"
	"github.com/urfave/cli"

	"txload/pkg/loadgen"
	"txload/pkg/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	app := newApp(version)
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%+v", err)
	}
}

func newApp(version string) *cli.App {
	app := cli.NewApp()
	app.Name = "txload"
	app.Version = fmt.Sprintf("%s, %s, %s, %s", version, commit, date, builtBy)

	app.Usage = "synthetic load generator for framed TCP benchmark targets"
	app.ArgsUsage = "ADDR"

	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "YAML run configuration file",
		},
		cli.IntFlag{
			Name:  "size, s",
			Usage: "size of each payload in bytes",
		},
		cli.IntFlag{
			Name:  "rate, r",
			Usage: "rate (payloads/s) at which to send",
		},
		cli.StringSliceFlag{
			Name:  "nodes, n",
			Usage: "addresses that must be reachable before starting the benchmark",
		},
		cli.IntFlag{
			Name:  "port, p",
			Usage: "port to listen on for inbound deliveries",
		},
		cli.BoolFlag{
			Name:  "local",
			Usage: "bind the inbound listener to loopback only",
		},
		cli.BoolFlag{
			Name:  "honest",
			Usage: "make every sent payload a sample payload",
		},
		cli.BoolFlag{
			Name:  "stats",
			Usage: "print per-second throughput to stdout",
		},
		cli.BoolFlag{
			Name:  "log-json",
			Usage: "log in JSON format",
		},
		cli.IntFlag{
			Name:  "verbose, v",
			Usage: "verbosity, 1 and above enables debug logging",
		},
		cli.BoolFlag{
			Name:  "quiet, q",
			Usage: "only log warnings and errors",
		},
	}
	app.Action = run
	return app
}

func run(ctx *cli.Context) error {
	cfg := loadgen.Config{}
	defaults.SetDefaults(&cfg)

	if path := ctx.String("config"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return err
		}
	}

	// Flags override the file.
	if ctx.NArg() > 0 {
		cfg.Target = ctx.Args().First()
	}
	if ctx.IsSet("size") {
		cfg.Size = ctx.Int("size")
	}
	if ctx.IsSet("rate") {
		cfg.Rate = ctx.Int("rate")
	}
	if ctx.IsSet("nodes") {
		cfg.Nodes = ctx.StringSlice("nodes")
	}
	if ctx.IsSet("port") {
		cfg.Port = ctx.Int("port")
	}
	if ctx.Bool("local") {
		cfg.Local = true
	}
	if ctx.Bool("honest") {
		cfg.Honest = true
	}
	if ctx.Bool("stats") {
		cfg.Stats = true
	}

	cfg.LoggerConfig = logger.Config{
		JSON:    ctx.Bool("log-json"),
		Verbose: ctx.Int("verbose"),
		Quiet:   ctx.Bool("quiet"),
	}
	if err := cfg.LoggerConfig.FromEnv(); err != nil {
		return err
	}

	lg, cleanup, err := logger.NewLogger(cfg.LoggerConfig)
	if err != nil {
		return err
	}
	defer cleanup(context.Background())

	client, err := loadgen.New(cfg, lg)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return client.Run(runCtx)
}
