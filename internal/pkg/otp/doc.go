// Package otp generates short-lived numeric one-time codes for login
// challenges delivered over SMS or email.
//
// Codes are drawn uniformly from a cryptographically secure source and
// rendered as fixed-width digit strings, so leading zeros are preserved.
package otp
