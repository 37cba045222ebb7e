// Package cli provides the interactive portal session command-line client.
//
// It wires configuration, the gateway HTTP client, the session lifecycle
// controller, and the route guard into an interactive REPL. Typical flow:
// prompt for credentials, then execute user commands against the session.
//
// Key features:
//   - Login / Logout against the clinic gateway
//   - Navigation through the route guard ("go <page>")
//   - Viewing the authenticated profile and hydrated collections
//   - Querying the gateway's notion of current time
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
