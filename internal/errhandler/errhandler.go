package errhandler

import (
	"fmt"
	"io"
	"os"
	"unicode"

	"github.com/pterm/pterm"
)

func init() {
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " ERROR ",
		Style: pterm.NewStyle(pterm.BgLightRed, pterm.FgBlack),
	}
}

// HandleError reports a fatal error on stderr.
func HandleError(err error) {
	Fprint(os.Stderr, err)
}

func Fprint(w io.Writer, err error) {
	if err == nil {
		return
	}

	msg := pterm.Error.Sprintln(capitalize(err.Error()))
	if _, werr := io.WriteString(w, msg); werr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
