package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	fbmcp "github.com/claude/fitbuddy/internal/mcp"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	_ = godotenv.Load()

	serverURL := flag.String("server", os.Getenv("FITBUDDY_URL"), "FitBuddy server URL (e.g. https://fitbuddy.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("FITBUDDY_AUTH_API_KEY"), "API key for the FitBuddy server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("fitbuddy-mcp", Version)
		return
	}

	// stdout carries the MCP protocol; log to stderr
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" || *apiKey == "" {
		fmt.Fprintf(os.Stderr, "Usage: fitbuddy-mcp -server <URL> -api-key <key>\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ds := fbmcp.NewHTTPClient(*serverURL, *apiKey)
	s := fbmcp.New(ds, Version, log)

	log.Info("serving MCP over stdio", "server", *serverURL)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("stdio server failed", "error", err)
		os.Exit(1)
	}
}
