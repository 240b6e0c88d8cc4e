// Package cache is the read-through response cache for slow-changing
// backend resources (groups, permission definitions, group permissions).
//
// Entries live in two tiers: an in-process expirable LRU and the kv table,
// where each entry is a pair of rows, cache:<key> with the raw JSON body and
// cache_time:<key> with the store time in epoch milliseconds. An entry is
// valid while now - storedAt < ttl; the ttl is chosen by the reader, so the
// same entry can be fresh for one caller and stale for another.
package cache
