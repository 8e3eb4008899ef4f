// downstream-stub simula um dos serviços chamados pelo relay (A ou B), para
// testes manuais de ponta a ponta.
//
//	STUB_NAME=service_b LISTEN_ADDR=:8081 go run ./cmd/downstream-stub
//	STUB_NAME=service_a LISTEN_ADDR=:8082 go run ./cmd/downstream-stub
//
// Responde {"service": STUB_NAME, "received": <payload>} e, com STUB_FAIL=true,
// devolve 502 para exercitar o caminho de erro do relay.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"relay-gateway/middleware/respond"
)

type echo struct {
	Service  string          `json:"service"`
	Received json.RawMessage `json:"received"`
}

func main() {
	name := getenvDefault("STUB_NAME", "service")
	addr := getenvDefault("LISTEN_ADDR", ":8081")
	failing := os.Getenv("STUB_FAIL") == "true"

	mux := http.NewServeMux()
	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			respond.StatusError(w, http.StatusBadRequest)
			return
		}
		log.Printf("%s received %d bytes: %s", name, len(body), body)

		if failing {
			respond.StatusError(w, http.StatusBadGateway)
			return
		}
		if !json.Valid(body) {
			// corpo não-JSON volta como string
			quoted, _ := json.Marshal(string(body))
			body = quoted
		}
		respond.JSON(w, http.StatusOK, echo{Service: name, Received: body})
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("%s stub listening on %s", name, addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
