// Package context holds request-scoped values shared between the HTTP
// middleware chain and the logging handlers.
package context

type contextKey string
