// Package google manages the OAuth credential used for Google Calendar and Gmail.
//
// A Manager loads the cached token from a TokenStore, refreshes it when it has
// expired, and falls back to interactive consent through an Authorizer when no
// usable token exists. Every token that differs from the cached one is written
// back, including tokens refreshed later by the TokenSource handed to API clients.
//
// The default Authorizer is a LoopbackAuthorizer, which serves the OAuth
// redirect on a random 127.0.0.1 port and opens the consent page in the
// system browser.
package google
