// Package main provides the arenaml CLI.
package main

import (
	"fmt"
	"os"
)

const version = "v0.1.0"

func usage() {
	fmt.Println("arenaml - softmax regression on a bump arena")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  train      Train a model from a YAML config and report accuracy")
	fmt.Println("  infer      Train, then classify one sample given with -sample")
	fmt.Println("  serve      Train, then answer POST /infer over HTTP")
	fmt.Println("  history    List recorded runs or print one run's loss curve")
	fmt.Println("  version    Show version")
	fmt.Println("")
	fmt.Println("Run 'arenaml <command> -h' for command flags.")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "version":
		fmt.Printf("arenaml %s\n", version)
	case "train":
		runTrain(args)
	case "infer":
		runInfer(args)
	case "serve":
		runServe(args)
	case "history":
		runHistory(args)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}
