package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pullbill/pullbill/scripts/internal"
)

// Command represents a script that can be run
type Command struct {
	Name        string
	Description string
	Run         func() error
}

var commands = []Command{
	{
		Name:        "generate-wallet",
		Description: "Generate a client keypair and account address",
		Run:         internal.GenerateWallet,
	},
	{
		Name:        "sign-registration",
		Description: "Sign a registration consent with a client key",
		Run:         internal.SignRegistrationConsent,
	},
	{
		Name:        "sign-cancellation",
		Description: "Sign a cancellation consent with a client key",
		Run:         internal.SignCancellationConsent,
	},
}

func main() {
	var (
		listCommands bool
		cmdName      string
	)

	flag.BoolVar(&listCommands, "list", false, "List available commands")
	flag.StringVar(&cmdName, "cmd", "", "Command to run")
	flag.Parse()

	if listCommands {
		fmt.Println("Available commands:")
		for _, cmd := range commands {
			fmt.Printf("  %-20s %s\n", cmd.Name, cmd.Description)
		}
		return
	}

	if cmdName == "" {
		fmt.Println("Usage: go run scripts/main.go -cmd <command>")
		fmt.Println("Run with -list to see available commands")
		os.Exit(1)
	}

	for _, cmd := range commands {
		if cmd.Name == cmdName {
			if err := cmd.Run(); err != nil {
				log.Fatalf("%s failed: %v", cmd.Name, err)
			}
			return
		}
	}

	log.Fatalf("unknown command: %s", cmdName)
}
