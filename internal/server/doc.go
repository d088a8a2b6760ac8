// Package server provides the LDAP server implementation including the
// per-connection session engine, the connection message loop and the
// listener bootstrap.
//
// # Overview
//
// Each accepted client gets its own goroutine running a Connection. The
// Connection reads one message, hands it to its Session, writes and flushes
// the responses, and only then reads the next message:
//
//	reading -> dispatching -> writing -> reading ... -> closed
//
// The Session keeps the identity of the last successful bind (initially
// Unauthenticated) and supports four operations:
//
//   - Bind: checks the credentials with the Backend and answers success or
//     invalidCredentials
//   - Search: one SearchResultEntry per entry from the Directory followed
//     by a SearchResultDone
//   - WhoAmI: returns "dn: <identity>"
//   - Unbind: closes the connection without a response
//
// Any message that cannot be decoded, or that carries an unsupported
// operation, ends the connection after a best-effort notice of
// disconnection.
//
// # Running a Server
//
//	srv, err := server.New(
//	    server.WithBackend(mem),
//	    server.WithLogger(logger),
//	    server.WithReadTimeout(5*time.Minute),
//	)
//	if err != nil {
//	    return err
//	}
//	return srv.ListenAndServe(ctx, ":3890")
//
// Cancelling ctx closes the listener and every open connection, and
// ListenAndServe returns once all connection goroutines have exited.
//
// # Logging
//
// Each connection logs under its own request ID, so every line belonging to
// one client can be correlated:
//
//	{"level":"info","msg":"bind succeeded","request_id":"...","dn":"cn=admin,dc=example,dc=com"}
package server
