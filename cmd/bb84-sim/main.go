package main

import (
	"fmt"
	"os"

	pkgversion "github.com/qkdlab/bb84-go/pkg/version"
)

// Build-time variables (set via -ldflags)
var (
	version   = ""        // Set via -ldflags "-X main.version=x.y.z"
	buildTime = "unknown" // Set via -ldflags "-X main.buildTime=..."
	gitCommit = "unknown" // Set via -ldflags "-X main.gitCommit=..."
)

func getVersion() string {
	if version != "" {
		return version
	}
	return pkgversion.String()
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "run":
		runCommand()
	case "encrypt":
		encryptCommand()
	case "decrypt":
		decryptCommand()
	case "serve":
		serveCommand()
	case "version":
		fmt.Printf("bb84-sim version %s\n", getVersion())
		if buildTime != "unknown" {
			fmt.Printf("Built: %s\n", buildTime)
		}
		if gitCommit != "unknown" {
			fmt.Printf("Commit: %s\n", gitCommit)
		}
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bb84-sim - BB84 Quantum Key Distribution Simulator

USAGE:
    bb84-sim <command> [options]

COMMANDS:
    run       Run the BB84 protocol and print the audit table
    encrypt   Encrypt a message with a key-derived AEAD
    decrypt   Decrypt an envelope produced by encrypt
    serve     Start the JSON HTTP API server
    version   Print version information
    help      Show this help message

Run 'bb84-sim <command> --help' for more information on a command.

EXAMPLES:
    # Exchange 32 qubits with an eavesdropper on the channel
    bb84-sim run --bits 32 --eve --eve-prob 0.5

    # Reproducible run as JSON
    bb84-sim run --bits 16 --seed 42 --json

    # Encrypt under a sifted key, then decrypt the envelope
    bb84-sim encrypt --message "attack at dawn" --key '[1,0,1,1]'
    bb84-sim encrypt --message "attack at dawn" --key '[1,0,1,1]' |
        bb84-sim decrypt --envelope - --key '[1,0,1,1]'

    # Serve the API on port 8080 with metrics and health checks
    bb84-sim serve --addr :8080 --log-level info`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
