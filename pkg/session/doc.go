/*
Package session coordinates access to server-side snapshots.

A Manager serializes every load-modify-save cycle on one session ID within
the process, and across replicas when a ports.DistributedLocker is configured.
Per-session locks are reference counted and dropped once unused.
*/
package session
