package main

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	client  = &http.Client{Timeout: 15 * time.Second}
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vhubctl",
		Short: "Query a vhubd instance's device registry over its REST API",
	}
	root.PersistentFlags().StringVar(&baseURL, "addr", "http://localhost:8080", "vhubd REST API base address")

	root.AddCommand(newDevicesCmd())
	root.AddCommand(newDeviceInfoCmd())
	root.AddCommand(newGetStreamCmd())
	return root
}
