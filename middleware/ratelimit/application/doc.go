// Package application contém os casos de uso (regras de aplicação) para rate limit
// e limite de relays simultâneos.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Decide(key) incrementa a janela da chave e retorna uma Decision
// (allow/deny + limite, restante, reset e retry-after).
package application
