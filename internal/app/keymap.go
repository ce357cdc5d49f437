package app

// Key binding constants used in handleKey.
const (
	KeyQuit       = "q"
	KeyQuitUpper  = "Q"
	KeyCtrlC      = "ctrl+c"
	KeyUp         = "up"
	KeyDown       = "down"
	KeyJ          = "j"
	KeyK          = "k"
	KeyEnter      = "enter"
	KeyEsc        = "esc"
	KeyBackspace  = "backspace"
	KeySearch     = "/"
	KeyToggleView = "v"
	KeyEdit       = "e"
	KeyRetry      = "r"
	KeyNew        = "n"
	KeyExport     = "x"
	KeySave       = "ctrl+s"
)
