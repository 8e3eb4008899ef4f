// Package ratelimit fornece adapters HTTP (net/http) para rate limit por janela fixa
// e limite de relays simultâneos.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela fixa em memória, semáforo, estatísticas)
//   - ratelimit (este pacote): middlewares HTTP + extração de chave + tradução para status/headers
//
// Fluxo no gateway:
//
//  1. Extrai a chave do cliente (IP ou primeiro X-Forwarded-For)
//  2. Chama a camada application para incrementar a janela e obter a decisão
//  3. Se bloqueado, responde 429 com a mensagem fixa (rate limit) ou 503 (concorrência)
//  4. Se permitido, chama o próximo handler (logging + relay)
//
// O binário cmd/relay controla o comportamento por variáveis de ambiente,
// como RATE_LIMIT, RATE_WINDOW, CONCURRENCY_MAX e CONCURRENCY_TIMEOUT.
package ratelimit
