package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func setupLogging(debug bool) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.Development = false
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.OutputPaths = []string{"stderr"}
	if debug {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	} else {
		cfg.Level.SetLevel(zapcore.WarnLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli.App{
		Name:  "roomchat",
		Usage: "chat in your community rooms from the terminal",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				EnvVars: []string{"ROOMCHAT_DEBUG"},
			},
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8000",
				EnvVars: []string{"ROOMCHAT_SERVER"},
			},
			&cli.StringFlag{
				Name:    "token-file",
				Usage:   "where the session token is kept between runs",
				EnvVars: []string{"ROOMCHAT_TOKEN_FILE"},
			},
		},
		Before: func(cctx *cli.Context) error {
			return setupLogging(cctx.Bool("debug"))
		},
		Commands: []*cli.Command{
			signupCommand(),
			signinCommand(),
			signoutCommand(),
			onboardCommand(),
			roomsCommand(),
			chatCommand(),
			waitlistCommand(),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		zap.L().Fatal("unhandled error", zap.Error(err))
	}
}
