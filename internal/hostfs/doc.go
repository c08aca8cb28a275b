// Package hostfs provides safe access helpers for host files the login manager
// reads and writes: the user databases, the session list, the selection file.
//
// Reads and writes of the same path are serialized in-process; writes replace
// the target atomically where the filesystem allows it.
package hostfs
