/*
Package session serializes access to page documents.

Edits of the same page are applied one at a time: a reference-counted in-process
mutex guards each page, and an optional distributed locker extends the guarantee
across editor replicas sharing one store.
*/
package session
