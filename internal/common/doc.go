// Package common contains shared constants, error types and small helpers
// used across the GophAuth client packages.
package common
