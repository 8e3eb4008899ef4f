// Package relay implementa o encadeamento de duas chamadas do gateway.
//
// O corpo recebido em POST /api/transfer vai, sem alteração, para o serviço B.
// A resposta de B vai, também sem alteração, para o serviço A. A resposta de A
// volta para quem chamou.
//
// As duas chamadas são estritamente sequenciais: A só é chamado depois que B
// respondeu com sucesso. Qualquer falha (rede, timeout, status fora de 2xx)
// encerra a requisição com 500 e uma mensagem genérica; não há retry nem
// resultado parcial.
//
// Camadas:
//
//   - Client: POST de bytes para uma URL, com timeout finito e pacing opcional
//   - Service: as duas etapas, com log de cada payload e resposta
//   - Handler: adapter net/http (validação de presença, tradução de erros)
package relay
