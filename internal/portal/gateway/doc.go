// Package gateway contains the transport layer for the portal session kit.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     the gateway endpoints: Login, RefreshToken, UserData, ClientData,
//     StaffData, Logout, and ServerTime.
//  2. A concrete HTTP implementation (see HTTPClient) that issues JSON
//     requests in two modes — unauthenticated (login, refresh, server time)
//     and authenticated (bearer token per call) — and classifies failures
//     into a small typed taxonomy.
//
// # Error Handling
//
// Every operation returns a *Failure on error, carrying a Kind
// (KindUnauthorized, KindServerError, KindNetworkError, KindUnknown), the
// HTTP status when a response was received, and the server's message
// payload when present. Callers match on KindOf(err) rather than probing
// response objects.
//
// The transport holds no session state: tokens are passed per call and the
// package never mutates the session record.
package gateway
