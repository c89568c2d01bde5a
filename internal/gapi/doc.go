// Package gapi holds plumbing shared by the Google API session packages:
// construction of authenticated HTTP clients and the error taxonomy that
// remote failures are mapped into before they reach the tool router.
package gapi
