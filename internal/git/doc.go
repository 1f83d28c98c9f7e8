// Package git tells whether a vault file sits in a git work tree.
//
// A vault committed to git keeps every earlier encrypted copy in history,
// and each of those opens with the password it was saved under, even after
// the password has been changed.
package git
