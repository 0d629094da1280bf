// Package badger provides a BadgerDB-backed implementation of the
// storage interfaces: an exhaustive-scan vector store and a document
// repository sharing one database instance.
package badger
