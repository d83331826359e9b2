// Package client talks to the GophNotes gRPC API.
//
// GRPCClient keeps the access token returned by Login and attaches it to
// every later call through a unary interceptor. gRPC status codes are mapped
// to the sentinel errors in errors.go so callers can use errors.Is.
package client
