package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
)

type CLI struct {
	EnvFile  kongdotenv.ENVFileConfig `kong:"optional,name=env-file,default='.env',help='Load environment variables from this .env file.'"`
	LogLevel string                   `name:"log-level" default:"info" enum:"debug,info,warn,error" env:"HYPLOT_LOG_LEVEL" help:"Log level (${enum})."`

	Render  RenderCmd  `cmd:"" help:"Render a wind barb map from an L2B product."`
	History HistoryCmd `cmd:"" help:"List maps recorded in the render catalog."`
}

func main() {
	var cli CLI
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx := kong.Parse(&cli,
		kong.Name("hyplot"),
		kong.Description("Wind barb maps from HY-2 scatterometer Level 2B products."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	setupLogging(cli.LogLevel)

	if err := kctx.Run(); err != nil {
		log.Error().Err(err).Str("command", kctx.Command()).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}
