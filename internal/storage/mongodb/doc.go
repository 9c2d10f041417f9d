// Package mongodb provides MongoDB-backed implementations of the entity
// managers. The atomic semantics the engine relies on map to single-document
// operations: consuming an authorization code is a findOneAndDelete and
// refresh rotation is an update filtered on the current token value.
package mongodb
