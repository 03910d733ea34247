package output

import (
	"fmt"
	"io"
)

// ClearScreen clears the terminal and moves the cursor home.
func ClearScreen(w io.Writer) {
	_, _ = fmt.Fprint(w, "\033[2J\033[H")
}

func HideCursor(w io.Writer) {
	_, _ = fmt.Fprint(w, "\033[?25l")
}

func ShowCursor(w io.Writer) {
	_, _ = fmt.Fprint(w, "\033[?25h")
}
