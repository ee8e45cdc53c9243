// Package session declares a scope owner whose short name collides with
// alpha/session.Session.
package session

type Session struct{ Tenant string }
