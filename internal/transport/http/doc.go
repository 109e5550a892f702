// Package http contains the chi HTTP handlers for the dashboard API.
//
// Handlers depend on service interfaces rather than concrete services
// so tests can stub the service layer. All error responses are RFC 7807
// problem documents produced by the shared ErrorHandler.
package http
