// Package session declares a scope owner whose short name collides with
// beta/session.Session.
package session

type Session struct{ User string }
