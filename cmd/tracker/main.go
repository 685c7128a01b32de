package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"PriceTracker/internal/app"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	task := flag.String("task", "track", "Task to run: track, sweep, discover, list, delete, or server")
	configPath := flag.String("config", "config.yml", "Path to the YAML config file")
	target := flag.String("url", "", "Product URL (required by the delete task)")
	flag.Parse()

	application, err := app.New(*configPath)
	if err != nil {
		log.Fatalf("Startup failed: %v", err)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("Running task: %s", *task)

	switch *task {
	case "track":
		// Endless loop: sweep, sleep out the check interval, repeat.
		err = application.RunTracker(ctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}

	case "sweep":
		// One pass over the tracked URL set, then exit.
		err = application.RunSweep(ctx)

	case "discover":
		// Scrape the listing pages and merge new product URLs.
		err = application.RunDiscovery(ctx)

	case "list":
		err = application.ListProducts()

	case "delete":
		if *target == "" {
			log.Fatal("The delete task requires -url.")
		}
		err = application.DeleteProduct(*target)

	case "server":
		err = application.RunServer()

	default:
		log.Fatalf("Unknown task: %s.", *task)
	}

	if err != nil {
		log.Fatalf("Task %s failed: %v", *task, err)
	}
}
