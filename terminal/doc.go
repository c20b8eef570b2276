// Package terminal renders the editor onto a real terminal through tcell.
//
// Features:
//   - Shadow frame staged through the editor.Renderer calls, painted on Show
//   - Viewport that scrolls to keep the cursor visible on small terminals
//   - Reverse-video status line on the last screen row
//   - Crash handler that restores the screen before printing a panic
package terminal
