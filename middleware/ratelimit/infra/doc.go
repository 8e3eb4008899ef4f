// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
//   - FixedWindowStore: contador por chave em janela fixa, em memória
//   - SlotPool: semáforo simples para limite de relays simultâneos
//   - MemoryStatsStore / RedisStatsStore: estatísticas das decisões
package infra
