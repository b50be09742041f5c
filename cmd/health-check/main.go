// Package main provides a standalone health check command for RecipeWiz
// This command can be used for Docker health checks, monitoring scripts, and debugging
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/recipewiz/backend/internal/infrastructure/config"
	"github.com/recipewiz/backend/pkg/healthcheck"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeError   = 2
)

// Options holds command-line configuration
type Options struct {
	URL            string
	Timeout        time.Duration
	Verbose        bool
	OutputFormat   string
	ExpectedStatus string
	RetryCount     int
	RetryDelay     time.Duration
	ConfigPath     string
}

// probeResponse is the subset of the health response the command reads
type probeResponse struct {
	Status  healthcheck.Status `json:"status"`
	Version string             `json:"version"`
	Checks  []struct {
		Name     string             `json:"name"`
		Status   healthcheck.Status `json:"status"`
		Message  string             `json:"message"`
		Duration float64            `json:"duration_ms"`
	} `json:"checks"`
}

func main() {
	opts := parseFlags()
	os.Exit(run(opts))
}

// parseFlags parses command-line flags
func parseFlags() Options {
	opts := Options{}

	flag.StringVar(&opts.URL, "url", "", "Health check endpoint URL (default derived from config: ops port /healthz)")
	flag.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "Request timeout")
	flag.BoolVar(&opts.Verbose, "verbose", false, "Verbose output")
	flag.StringVar(&opts.OutputFormat, "format", "text", "Output format: text, json")
	flag.StringVar(&opts.ExpectedStatus, "expect", "healthy", "Minimum acceptable status: healthy, degraded")
	flag.IntVar(&opts.RetryCount, "retry", 0, "Number of retries on failure")
	flag.DurationVar(&opts.RetryDelay, "retry-delay", 1*time.Second, "Delay between retries")
	flag.StringVar(&opts.ConfigPath, "config", "", "Configuration file path")

	flag.Parse()

	return opts
}

func run(opts Options) int {
	url := opts.URL
	if url == "" {
		detected, err := detectHealthCheckURL(opts.ConfigPath)
		if err != nil {
			fmt.Printf("Failed to load configuration: %v\n", err)
			return exitCodeError
		}
		url = detected
	}

	client := &http.Client{Timeout: opts.Timeout}

	var lastError error
	for attempt := 0; attempt <= opts.RetryCount; attempt++ {
		if attempt > 0 {
			if opts.Verbose {
				fmt.Printf("Retrying in %v... (attempt %d/%d)\n", opts.RetryDelay, attempt, opts.RetryCount)
			}
			time.Sleep(opts.RetryDelay)
		}

		resp, err := client.Get(url)
		if err != nil {
			lastError = err
			if opts.Verbose {
				fmt.Printf("Request failed: %v\n", err)
			}
			continue
		}

		return handleResponse(resp, opts)
	}

	fmt.Printf("Health check failed after %d attempts: %v\n", opts.RetryCount+1, lastError)
	return exitCodeError
}

// detectHealthCheckURL derives the ops listener URL from configuration
// unless HEALTH_CHECK_URL is set
func detectHealthCheckURL(configPath string) (string, error) {
	if url := os.Getenv("HEALTH_CHECK_URL"); url != "" {
		return url, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://127.0.0.1:%d/healthz", cfg.Monitoring.MetricsPort), nil
}

// handleResponse handles the HTTP response
func handleResponse(resp *http.Response, opts Options) int {
	defer resp.Body.Close()

	var response probeResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		fmt.Printf("Failed to decode response: %v\n", err)
		return exitCodeError
	}

	switch opts.OutputFormat {
	case "json":
		data, _ := json.MarshalIndent(response, "", "  ")
		fmt.Println(string(data))
	default:
		outputText(response, opts.Verbose)
	}

	return exitCode(response.Status, healthcheck.Status(opts.ExpectedStatus))
}

// exitCode succeeds when status is at least as good as expected
func exitCode(status, expected healthcheck.Status) int {
	switch status {
	case healthcheck.StatusHealthy:
		return exitCodeSuccess
	case healthcheck.StatusDegraded:
		if expected == healthcheck.StatusDegraded {
			return exitCodeSuccess
		}
		return exitCodeFailure
	default:
		return exitCodeFailure
	}
}

// outputText outputs the result in text format
func outputText(r probeResponse, verbose bool) {
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Version: %s\n", r.Version)

	if verbose && len(r.Checks) > 0 {
		fmt.Println("\nChecks:")
		for _, check := range r.Checks {
			fmt.Printf("  %s: %s", check.Name, check.Status)
			if check.Message != "" {
				fmt.Printf(" (%s)", check.Message)
			}
			fmt.Printf(" [%.0fms]\n", check.Duration)
		}
	}
}
