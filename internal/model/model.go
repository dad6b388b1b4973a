// Package model declares the persisted entities and, for each of them, the
// insertable contract a client may submit.
//
// Entities mirror table rows one to one. Relationships are plain id fields;
// the database enforces them, nothing here holds an object graph.
package model
