// Package pack implements the reference-tracking object-graph serialization
// engine. Pack flattens an in-memory object graph, possibly cyclic and
// possibly sharing sub-objects by reference, into a JSON-compatible
// Envelope; Unpack reconstructs an equivalent graph from an Envelope,
// preserving identity, sharing, and cycles.
//
// Non-primitive values are lifted into a reference table and replaced by
// string tokens of the form "<>N" (object reference) or "<>:name" (type
// reference). Custom types participate through the process-wide registry:
// Register associates a type with pack, create, and unpack functions, and
// unpacking runs create-then-populate in two phases so that a child link
// back to an ancestor resolves to the ancestor's in-progress instance.
//
// All session state lives on the per-call Packer and Unpacker, so
// concurrent Pack and Unpack calls are safe; only registration mutates
// process-wide state.
//
// Implements: prd001-pack-core; docs/ARCHITECTURE § Pack Engine.
package pack
