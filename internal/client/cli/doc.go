// Package cli provides the interactive cloudstore command-line client.
//
// It wires configuration, the HTTP API client and an interactive REPL.
// Typical flow: login, then list, upload, download, rename and delete files.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
