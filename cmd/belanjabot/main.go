package main

import (
	"fmt"
	"os"

	"github.com/belanjabot/belanjabot/pkg/logging"
)

func main() {
	logger := logging.Setup(logging.DefaultConfig())

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	var err error
	switch command {
	case "serve":
		err = runServe(logger)
	case "setwebhook":
		err = runSetWebhook(logger)
	case "status":
		err = runStatus()
	case "help", "-h", "--help":
		printUsage()
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: belanjabot <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve       Start the webhook server and report scheduler (default)")
	fmt.Println("  setwebhook  Register the webhook URLs with Telegram")
	fmt.Println("  status      Check configuration and connectivity")
	fmt.Println("  help        Show this help")
}
