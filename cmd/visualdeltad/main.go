// visualdeltad serves the visual-delta snapshot and event-stream
// endpoints over HTTP/WebSocket.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meetsignal/visualdelta/internal/config"
	"github.com/meetsignal/visualdelta/internal/log"
	"github.com/meetsignal/visualdelta/pkg/adgate"
	"github.com/meetsignal/visualdelta/pkg/llmbackend"
	"github.com/meetsignal/visualdelta/pkg/pipeline"
	"github.com/meetsignal/visualdelta/pkg/transport"
)

func main() {
	addr := flag.String("listen", "", "HTTP listen address (overrides LISTEN_ADDR)")
	verbosity := flag.String("verbosity", "normal", "AD verbosity: minimal or normal")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*logLevel)
	logger := log.Component("visualdeltad")

	listenAddr := *addr
	if listenAddr == "" {
		listenAddr = config.ListenAddr(config.DefaultListenAddr)
	}

	cfg := pipeline.DefaultConfig()
	if *verbosity == "minimal" {
		cfg.Gate.Verbosity = adgate.VerbosityMinimal
		cfg.Verbalizer.Verbosity = "minimal"
	}

	apiKey := os.Getenv("VISUALDELTA_LLM_API_KEY")
	if apiKey != "" {
		cfg.Verbalizer.UseLLM = true
	}

	srv := transport.NewServer(cfg, config.AuthToken())

	if apiKey != "" {
		logger.Info("LLM verbalization backend enabled")
		client := llmbackend.New(llmbackend.DefaultConfig(), llmbackend.WithAPIKey(apiKey))
		srv.SetLLMHandler(client.Handler())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "addr", listenAddr)
		if err := srv.Listen(listenAddr); err != nil {
			logger.Error("server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
	}
}
