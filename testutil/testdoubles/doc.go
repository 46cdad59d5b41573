// Package testdoubles provides spies for the dependency-free observability interfaces, the event
// publishing contract, and RecordStore implementations.
//
// Spies created with recordCalls set to false accept every call and record nothing, which keeps
// hot test loops cheap.
package testdoubles
