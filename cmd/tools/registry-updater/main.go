// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gematria-workers/internal/common/config"
	"gematria-workers/pkg/registry"
)

func main() {
	generateCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	configPath := generateCmd.String("config", "configs/config.yaml", "Application config to read worker settings from")
	outPath := generateCmd.String("out", "configs/activity-registry.json", "Where to write the registry")

	registryPath := validateCmd.String("path", "configs/activity-registry.json", "Path to registry file")

	if len(os.Args) < 2 {
		help(os.Stdout)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		_ = generateCmd.Parse(os.Args[2:])
		n, err := generate(*configPath, *outPath)
		if err != nil {
			fmt.Printf("Error generating registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d activities to %s\n", n, *outPath)

	case "validate":
		_ = validateCmd.Parse(os.Args[2:])
		n, err := validate(*registryPath)
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d activities.\n", n)

	case "help":
		fallthrough
	default:
		help(os.Stdout)
	}
}

func generate(configPath, outPath string) (int, error) {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return 0, err
	}
	reg := registry.Build(cfg)
	if err := reg.Save(outPath); err != nil {
		return 0, err
	}
	return len(reg.Activities), nil
}

func validate(path string) (int, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return 0, fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return 0, err
	}
	return len(reg.Activities), nil
}

func help(w io.Writer) {
	fmt.Fprint(w, `
Usage: registry-updater <command> [flags]

Commands:
  generate  Write the activity registry for the configured workers
  validate  Validate a registry file
  help      Show this help message

Examples:
  registry-updater generate -config configs/config.yaml -out configs/activity-registry.json
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.
`)
}
