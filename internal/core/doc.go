// Package core is the hush vault engine.
//
// Store holds the records of the open vault in insertion order and presents
// them favorites first. Records are addressed by 1-based display index,
// resolved against the filter of the most recent listing.
//
// Engine owns the Store and the vault file behind it:
//   - Open/SaveAs: decrypt or encrypt the whole vault under one passphrase
//   - Autosave: rewrite the open vault after every mutation
//   - TryOpenLast/Forget: the remembered last vault path
//   - CopySecret: copy to the clipboard and clear it when the exposure window ends
//
// The engine draws nothing and touches no platform service. Prompts, the
// clipboard and hardware tokens are capabilities supplied by the shell.
package core
