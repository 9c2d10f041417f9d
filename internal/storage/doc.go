// Package storage provides in-memory implementations of the entity managers.
// They are the default when embedding the provider and back most of the test
// suite. Entities are kept in maps keyed by opaque ids and looked up through
// predicates, never through embedded back-references.
package storage
