// Command mobile is the terminal companion client for the audiobook
// library. It browses the catalog of a running server over its JSON API.
package main

import (
	"fmt"
	"os"

	"github.com/aaa221132/audiobook-library/internal/mobile"
)

func main() {
	baseURL := os.Getenv("LIBRARY_URL")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8000"
	}

	if err := mobile.Run(baseURL); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
