// Package cli provides the interactive clipshare terminal client.
//
// It wires configuration, the local state database, the HTTP API client, the
// auth form controller, the session registry and the clipboard sync engine
// behind a small REPL. On start it restores a non-expired sign-in and
// re-joins the last session; from then on every change of the shared
// clipboard is printed as it arrives.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
