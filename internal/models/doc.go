// Package models defines the persistent entities of the recommendation history.
//
//   - [Run] : one recommendation batch with its display list and catalog URIs
//   - [PublishedPlaylist] : a playlist the publisher created or extended, linked to its run
//
// Both embed [Entity], which carries the id, sequence number, timestamps and soft delete
// marker. The Repository[T] interface defines standard CRUD operations for database access.
package models
