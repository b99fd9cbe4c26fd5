package display

import (
	"fmt"
	"io"

	"github.com/backmassage/muxsplit/internal/term"
)

const banner = ` _ __ ___  _   ___  _____ _ __ | (_) |_
| '_ ` + "`" + ` _ \| | | \ \/ / __| '_ \| | | __|
| | | | | | |_| |>  <\__ \ |_) | | | |_
|_| |_| |_|\__,_/_/\_\___/ .__/|_|_|\__|
                         |_|`

// PrintBanner writes the ASCII banner; magenta when colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprintln(w, term.Paint(term.Magenta, banner))
}
