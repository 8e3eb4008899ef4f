// Package respond escreve as respostas padronizadas do gateway.
//
// Todo erro visível ao cliente sai como {"error": "<mensagem fixa>"}; detalhes
// internos ficam só no log.
package respond

import (
	"encoding/json"
	"io"
	"net/http"
)

type ErrorBody struct {
	Error string `json:"error"`
}

// Error escreve {"error": msg} com o status informado.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// StatusError usa o texto padrão do status como mensagem.
func StatusError(w http.ResponseWriter, status int) {
	Error(w, status, http.StatusText(status))
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Raw devolve o corpo como veio, sem reencodar.
func Raw(w http.ResponseWriter, status int, contentType string, body []byte) {
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Text escreve uma mensagem em texto puro, sem newline no final.
func Text(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}
