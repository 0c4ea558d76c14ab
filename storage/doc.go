// Package storage provides the persistent collaborators of the simulation:
// the fuel ledger (per-vehicle fuel records) and the wallet (per-player
// cash). Two implementations ship: an in-memory store used by tests and
// standalone servers, and a MongoDB-backed store matching the deployment
// where vehicle and character documents live in Mongo.
//
// Both stores are linearizable per key: the memory store through a single
// mutex, the Mongo store through single-document operations.
package storage
