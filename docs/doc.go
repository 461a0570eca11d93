// Package docs implements the document modality: parsing, canonicalizing,
// patching, and projecting semi-structured (JSON-family) values that are
// stored, at rest, as a single canonical binary-JSON (msgpack-family)
// encoding on top of the polykv blob layer.
package docs
