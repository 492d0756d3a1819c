package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func run(args []string) int {
	if len(args) < 2 {
		usage(args)
		return 1
	}

	switch args[1] {
	case "digest":
		return runDigest(args[2:])
	case "login":
		return runLogin(args[2:])
	case "register":
		return runRegister(args[2:])
	case "verify":
		return runVerify(args[2:])
	}

	usage(args)
	return 1
}

func usage(args []string) {
	name := "docvault"
	if len(args) > 0 && args[0] != "" {
		name = filepath.Base(args[0])
	}
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  %s digest --in <file>\n", name)
	fmt.Fprintf(os.Stderr, "  %s login --server <url> --username <name> [--password <pass>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s register --server <url> --token <jwt> --in <file> [--name <document>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s verify --server <url> --token <jwt> --name <document> --in <file>\n", name)
}
