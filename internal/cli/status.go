package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/vietddude/cascade/internal/core/domain"
)

var statusAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the cascade service",
	Run:   runCascade,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query the health of a running cascade instance",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "http://localhost:8080", "address of the running instance")
	rootCmd.AddCommand(serveCmd, statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(statusAddr + "/health/detailed")
	if err != nil {
		fmt.Fprintf(os.Stderr, "cascade unreachable at %s: %v\n", statusAddr, err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var health domain.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		fmt.Fprintf(os.Stderr, "failed to decode health response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("overall: %s\n", health.Overall)
	for _, stage := range health.Stages {
		marker := "up"
		if !stage.Available {
			marker = "down"
		}
		fmt.Printf("  %-20s %-5s breaker=%s failures=%d success=%.1f%% avg=%s\n",
			stage.Name, marker, stage.Breaker.State, stage.Breaker.FailureCount,
			stage.SuccessRate, stage.AvgLatency)
	}

	if health.Overall == domain.StatusUnhealthy {
		os.Exit(1)
	}
}
