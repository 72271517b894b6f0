/*
Package ports defines the driven ports (interfaces) of the page editor.

These interfaces decouple the editor from external implementations, allowing
page documents to live in memory, on disk or in Redis.

# Key Interfaces

  - DocumentStore: Persists and loads page documents (tree + history).
  - DistributedLocker: Provides distributed locking for concurrent edits of one page.
*/
package ports
