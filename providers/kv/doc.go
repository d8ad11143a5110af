// Package kv defines the key-value persistence used for the saved provider
// configuration and the message history.
//
// Values are opaque bytes; [GetJSON] and [SetJSON] cover the common case of
// storing one JSON document per key. Backends live in sub-packages: inmemory
// for tests and ephemeral runs, filestore for a single JSON file, sqlstore
// for SQLite through gorm and redisstore for a shared Redis instance.
package kv
