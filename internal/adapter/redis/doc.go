// Package redis stores sessions in Redis.
//
// Each session is a JSON document under "session:{id}" with a sliding TTL refreshed on every
// save. The client carries two hooks: MetricsHook records every command, CircuitBreakerHook
// fails fast while Redis is unhealthy and serves recently read sessions from memory.
package redis
