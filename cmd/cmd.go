package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/urfave/cli"
	"github.com/warpdl/timeseq/cmd/common"
	sharedcommon "github.com/warpdl/timeseq/common"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var debug bool

var debugFlag = cli.BoolFlag{
	Name:        "debug, d",
	Usage:       "enable debug logging",
	Destination: &debug,
	EnvVar:      sharedcommon.DebugEnv,
}

func Execute(args []string, bArgs BuildArgs) error {
	app := cli.App{
		Name:                  "timeseq",
		HelpName:              "timeseq",
		Usage:                 "Time-based sequence operators on an ordered scheduler.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "timeseq <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Commands: []cli.Command{
			{
				Name:                   "run",
				Aliases:                []string{"r"},
				Usage:                  "feed values through an operator",
				Description:            RunDescription,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Action:                 run,
				UseShortOptionHandling: true,
				Flags:                  runFlags,
			},
			{
				Name:                   "check",
				Aliases:                []string{"c"},
				Usage:                  "verify scheduler delivery order under load",
				Description:            CheckDescription,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Action:                 check,
				UseShortOptionHandling: true,
				Flags:                  checkFlags,
			},
			{
				Name:               "tick",
				Aliases:            []string{"t"},
				Usage:              "print periodic or cron ticks",
				Description:        TickDescription,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             tick,
				Flags:              tickFlags,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of timeseq",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		Action:      common.Help,
		HideHelp:    true,
		HideVersion: true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}

// signalContext is cancelled on the first interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
