// Package cargo locates a Rust package and runs its lint tool.
//
// The runner spawns `cargo clippy --message-format=json` with the
// documentation lints enabled, decodes stdout with internal/diag while it
// streams, and turns the human-readable progress cargo prints on stderr
// ("Compiling foo v0.1.0", "Checking bar v0.2.0") into Events for the UI.
package cargo
