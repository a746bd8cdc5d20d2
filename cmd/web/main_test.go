package main

import (
	"io"
	"net/http"
	"testing"

	"github.com/myrjola/fitroadmap/internal/e2etest"
	"github.com/myrjola/fitroadmap/internal/testhelpers"
)

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "FITROADMAP_SQLITE_URL":
		return ":memory:", true
	case "FITROADMAP_ADDR":
		return "localhost:0", true
	default:
		return "", false
	}
}

// lookupEnvWith layers overrides on top of testLookupEnv.
func lookupEnvWith(overrides map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := overrides[key]; ok {
			return v, true
		}
		return testLookupEnv(key)
	}
}

func startServer(t *testing.T, lookupEnv func(string) (string, bool)) *e2etest.Server {
	t.Helper()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), lookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	return server
}

// getText returns the body of a successful GET.
func getText(t *testing.T, client *e2etest.Client, urlPath string) string {
	t.Helper()
	resp, err := client.Get(t.Context(), urlPath)
	if err != nil {
		t.Fatalf("Failed to get %s: %v", urlPath, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 for %s, got %d", urlPath, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", urlPath, err)
	}
	return string(body)
}
