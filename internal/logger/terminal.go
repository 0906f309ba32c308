package logger

import "os"

// colorEnabled decides whether ANSI colors go to f. Colors are used only on
// real terminals, and the conventional opt-outs are honored: a non-empty
// NO_COLOR, or TERM=dumb.
func colorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal(f.Fd())
}
