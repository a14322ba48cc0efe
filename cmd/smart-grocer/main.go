package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"smart-grocer/internal/bootstrap"
	"smart-grocer/internal/config"
	"smart-grocer/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	ctx := context.Background()
	rt, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		slog.Error("Failed to start", "error", err)
		os.Exit(1)
	}

	c := &cli{app: rt.App, metrics: rt.Metrics, in: os.Stdin, out: os.Stdout}
	err = c.run(ctx, os.Args[1], os.Args[2:])
	if cerr := rt.Close(); cerr != nil {
		slog.Warn("Failed to close resources", "error", cerr)
	}
	if errors.Is(err, errUsage) {
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: smart-grocer <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  add <name> [-qty Q] [-price P] [-category C]   Add an item")
	fmt.Println("  list                                           Show the list grouped by category")
	fmt.Println("  toggle <n|id>                                  Mark an item as bought or pending")
	fmt.Println("  remove <n|id>                                  Remove one item")
	fmt.Println("  recipe <name>                                  Add the ingredients of a recipe")
	fmt.Println("  smart <text>                                   Turn a free-form note into items")
	fmt.Println("  clip <url>                                     Add the ingredients of a recipe page")
	fmt.Println("  share                                          Print the share text")
	fmt.Println("  export [-out F] [-snapshot ID] [-from D] [-to D]  Write a CSV report")
	fmt.Println("  archive [label]                                Archive the current list")
	fmt.Println("  history                                        List archived lists")
	fmt.Println("  rename <n|id> <label>                          Rename an archived list")
	fmt.Println("  restore <n|id> [-yes]                          Replace the list with an archived one")
	fmt.Println("  delete-snapshot <n|id> [-yes]                  Delete an archived list")
	fmt.Println("  clear [-all] [-yes]                            Remove bought (or all) items")
	fmt.Println("  stats [-from D] [-to D] [-category C]          Show spending analytics")
	fmt.Println("  compare <label,price,qty,unit>...              Compare unit prices (2 to 4 entries)")
	fmt.Println("  budget [goal]                                  Show or set the spending goal")
	fmt.Println("  metrics-cleanup [-days N]                      Remove old metric records")
}
