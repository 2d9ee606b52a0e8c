// Command digitnet trains and queries the handwritten digit network.
//
// Usage:
//
//	digitnet train   [-config digitnet.yaml] [-epochs N] [-batch-size N] ...
//	digitnet test    [-config digitnet.yaml] [-state network.json]
//	digitnet predict [-config digitnet.yaml] [-state network.json] -image digit.png
//	digitnet summary [-config digitnet.yaml] [-state network.json]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	log.SetFlags(log.LstdFlags)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "train":
		err = runTrain(ctx, args)
	case "test":
		err = runTest(args)
	case "predict":
		err = runPredict(args)
	case "summary":
		err = runSummary(args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `digitnet trains a fully connected network on 28x28 handwritten digits.

Commands:
  train     train on the configured dataset and save the network state
  test      report accuracy of a saved state on the test dataset
  predict   classify a single 28x28 PNG image
  summary   print the network architecture

Run "digitnet <command> -h" for the flags of a command.`)
}

// commonFlags registers the flags every subcommand shares.
type commonFlags struct {
	config string
	state  string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "Path to YAML config (defaults are used when empty)")
	fs.StringVar(&c.state, "state", "", "Network state to load (.json or gob)")
}
