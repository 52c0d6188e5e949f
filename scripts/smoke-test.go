//go:build ignore

// Smoke test against a locally running middleware.
// Run with: go run scripts/smoke-test.go
//
// Requires a Solana wallet bridge reachable by the server so the connect
// flow can complete.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

const apiURL = "http://localhost:8080/v1"

func main() {
	fmt.Println("=== Connecting wallet ===")
	token, address, err := connect("solana", "phantom")
	if err != nil {
		fmt.Printf("✗ Connect failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Connected as %s\n", address)

	fmt.Println()
	fmt.Println("=== Loading globe ===")
	places, err := getJSON(apiURL+"/places", "")
	if err != nil {
		fmt.Printf("✗ Load failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Loaded places: %s\n", truncate(places, 200))

	fmt.Println()
	fmt.Println("=== Publishing a like ===")
	resp, err := postJSON(apiURL+"/records/like", map[string]any{
		"placeId": "smoke-test-place",
		"liked":   true,
	}, token)
	if err != nil {
		fmt.Printf("✗ Like failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Like published: %s\n", resp)

	fmt.Println()
	fmt.Println("=== Disconnecting ===")
	req, _ := http.NewRequest(http.MethodDelete, apiURL+"/session", nil)
	if _, err := http.DefaultClient.Do(req); err != nil {
		fmt.Printf("✗ Disconnect failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Done")
}

func connect(chain, connector string) (token, address string, err error) {
	body, err := postJSON(apiURL+"/session/connect", map[string]any{
		"chain":     chain,
		"connector": connector,
	}, "")
	if err != nil {
		return "", "", err
	}

	var resp struct {
		Address string `json:"address"`
		Token   string `json:"token"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return "", "", err
	}
	return resp.Token, resp.Address, nil
}

func postJSON(url string, payload map[string]any, token string) (string, error) {
	data, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return do(req)
}

func getJSON(url, token string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return do(req)
}

func do(req *http.Request) (string, error) {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	return string(body), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
