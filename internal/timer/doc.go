// Package timer implements the clipboard exposure window.
//
// Only one window is active at a time: starting a new one replaces the old
// countdown instead of stacking. A countdown that runs out invokes its clear
// callback exactly once; a cancelled one never does.
package timer
