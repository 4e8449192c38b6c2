// Package diag models the diagnostic stream produced by the Rust lint tool.
//
// # Data model
//
// A Tree is an ordered forest of three node kinds:
//
//   - Message – one diagnostic: optional lint Code, Level, free text, the Spans
//     it annotates and child Messages (notes, help).
//   - Span – a location (file, 1-based row and column) plus the source Text
//     lines the diagnostic points at.
//   - Text – one source line and the raw highlight interval inside it.
//
// Walk visits the tree in pre-order: a Message, then its Spans (each followed
// by its Texts), then its child Messages. Consumers rely on a Message always
// being visited before the Spans it applies to.
//
// # Decoding
//
// Decoder reads the line-delimited JSON emitted by
// `cargo clippy --message-format=json`. Only "compiler-message" records carry
// diagnostics; other records are surfaced as Records so that callers can
// report progress. Lines that are not JSON objects are ignored.
//
// # Scope
//
// Package diag does no filtering, formatting or IO beyond reading the stream.
// Filtering lives in internal/filter, aggregation in internal/report and
// rendering in internal/diagfmt.
package diag
