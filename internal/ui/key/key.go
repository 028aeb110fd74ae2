package key

import "github.com/gdamore/tcell/v2"

/**
 * Keys and Runes!
 */

const (
	RuneColon = ':'
	RuneQ     = 'q'
	RuneR     = 'r'
)

const (
	KeyCtrlC = tcell.KeyCtrlC
	KeyCtrlD = tcell.KeyCtrlD
	KeyEnter = tcell.KeyEnter
	KeyEsc   = tcell.KeyEsc
)
