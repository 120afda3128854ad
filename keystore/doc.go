// Package keystore declares the signing/verification/key-management
// contract the rest of this module depends on; concrete adapters live
// in subpackages (keystore/local).
package keystore
