// Package models defines domain entities and persistence interfaces for the plexsync reconciliation engine.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing backlog and library data
//   - [TrackRequest] : A desired (title, artist) pair from a backlog CSV
//   - [Artist] : An artist entity in the media library
//   - [Track] : A library track candidate with its addable identifier
//   - [Playlist] : A snapshot of a destination playlist's current identity keys
//   - [MatchOutcome] : The classification of one backlog entry
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [SyncRun] : One reconciliation pass over a playlist, with per-bucket counts
//
// Persistent entities implement the Model interface providing ID generation, timestamps and validation.
// The Repository[T] interface defines standard data access operations.
package models
