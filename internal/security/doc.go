// Package security checks how a vault file is placed and protected on disk.
package security
