package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/example/go-kitten-tts/internal/config"
)

func TestStart_LifecycleHealthAndShutdown(t *testing.T) {
	// Find an available port.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	addr := ln.Addr().String()
	ln.Close() // free it for the server

	cfg := config.DefaultConfig()
	cfg.Server.ListenAddr = addr

	s := New(cfg, nopSynth{}, nopVoices{}).WithShutdownTimeout(2 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)

	go func() {
		errCh <- s.Start(ctx)
	}()

	// Wait for the server to be ready.
	client := &http.Client{Timeout: 2 * time.Second}

	var resp *http.Response

	for i := range 50 {
		_ = i

		resp, err = client.Get(fmt.Sprintf("http://%s/health", addr))
		if err == nil {
			break
		}

		time.Sleep(20 * time.Millisecond)
	}

	if err != nil {
		t.Fatalf("server never became ready: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/health status = %d; want 200", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode /health: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("status = %q; want ok", body["status"])
	}

	// Graceful shutdown.
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Start() returned error on shutdown: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return within 5s of context cancel")
	}
}

func TestStart_ListenFailureSurfaces(t *testing.T) {
	// Occupy a port so the server cannot bind it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := config.DefaultConfig()
	cfg.Server.ListenAddr = ln.Addr().String()

	s := New(cfg, nopSynth{}, nopVoices{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.Start(ctx); err == nil {
		t.Error("Start() = nil; want bind error for occupied port")
	}
}
