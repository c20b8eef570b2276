// Package editor holds the cursor rules and the session state machine that
// drives one document from id resolution through editing to the final save.
package editor
