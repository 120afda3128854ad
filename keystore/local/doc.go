// Package local implements keystore.Keystore with in-process Ed25519
// signing keys and X25519 box keys, optionally all derived from a
// single seed.
package local
