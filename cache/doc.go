// Package cache stores entities by key for the repository layer.
//
// # Backends
//
// Three implementations of Cache are provided:
//
//   - NewMemory: an in-process sturdyc client, sharded and capacity bound
//   - NewRedis: msgpack encoded values in redis, keys written as
//     "<prefix>:<version>:<key>"
//   - Nop: never stores anything, used when caching is disabled
//
// Every backend writes entries with a single TTL, DefaultTTL (60s) unless
// configured.
//
// # Keys
//
// Repositories build keys with a KeySerializer:
//
//	keys := cache.NewKeySerializer(cache.EntitySeparator)
//	key := keys.SerializeKey("blog:post", id) // "blog:post:<id>"
//
// The default serializer joins segments with "::" and handles slices, maps
// (sorted), structs (exported fields), pointers and time values
// deterministically. Function and channel arguments are rendered with their
// address, so they are only stable within a single process.
//
// # Errors
//
// A miss is reported by the boolean return of Get. Errors are reserved for
// backend failures such as a lost redis connection or an undecodable value;
// callers are expected to treat them as misses.
package cache
