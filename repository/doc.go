// Package repository persists entities and aggregates with optimistic locking.
//
// A Repository maps entities to Records through Mappers registered per entity type and
// writes them to a RecordStore (see the memoryengine and postgresengine packages).
// After every successful write or delete, the pending domain events of an aggregate are
// handed to an EventPublisher and committed.
//
// Saving follows one protocol for every entity:
//
//  1. resolve the Mapper of the entity type
//  2. validate the entity if it implements domain.Validatable
//  3. load the stored record to learn whether it exists and at which version
//  4. if the entity is dirty or not stored yet: check that PersistedVersion equals the stored
//     version and write (conditional update or insert)
//  5. sync createdAt, updatedAt, and version back from the stored record
//  6. publish and commit the pending events, if anything was written
//
// A lost race against another writer surfaces as a *ConcurrencyConflictError that carries the
// expected and the actual version. The caller reloads and retries.
//
// Observability is optional and dependency-free: Logger, ContextualLogger, MetricsCollector, and
// TracingCollector can be set with options. The oteladapters and zapadapter packages provide
// implementations.
package repository
