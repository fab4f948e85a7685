// Package ui renders status output for the one-shot commands: result lines
// and a spinner shown while waiting on the backend. The dashboard has its
// own styles in the console package.
package ui
