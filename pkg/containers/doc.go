// Package containers provides the transactional, packable container suite:
// Dict, List, Set, Deque, Stack, Heap, plus the explicit Wrapper for
// arbitrary values, the AttrView named-field facade over Dict, and the
// NDArray numeric adapter.
//
// Every container carries an identity token (pkg/ident), implements the
// transactional protocol (pkg/tx), and registers pack handlers with the
// engine (pkg/pack) at package load. Containers packed mid-transaction
// additionally serialize their shadow state; unpacking restores it, so the
// container comes back inside an open transaction that can be committed or
// aborted.
//
// Containers are not safe for concurrent use; the transactional protocol
// is single-threaded by contract.
//
// Implements: prd003-containers; docs/ARCHITECTURE § Container Suite.
package containers
