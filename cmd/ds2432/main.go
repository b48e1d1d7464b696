package main

import (
	"context"
	"flag"
	"log"
	"os"

	"k8s.io/klog"

	"github.com/urfave/cli/v3"
)

func main() {
	klog.InitFlags(flag.CommandLine)

	app := &cli.Command{
		Name:  "ds2432",
		Usage: "Authenticated access to DS2432/DS1961S secure 1-Wire EEPROMs",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log the wire-level command trace",
			},
		},
		Commands: []*cli.Command{
			mastersCommand(),
			readCommand(),
			writeCommand(),
			secretCommand(),
			registersCommand(),
			readAuthCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
