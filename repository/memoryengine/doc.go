// Package memoryengine provides an in-process RecordStore.
//
// Records are kept per kind in maps guarded by a sync.RWMutex. Record data is normalised
// through a JSON round trip on write, so readers observe the same value types a database
// backed store returns: numbers become float64 and nested structs become maps.
//
// Filters are evaluated in Go with SQL semantics: comparisons against a missing (NULL) value
// never match, LIKE patterns use % and _ and are case-sensitive.
package memoryengine
