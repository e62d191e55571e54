package format

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML escapes the characters Telegram's HTML parse mode treats as
// markup. Model-generated or user-echoed text must pass through here before
// being sent with ParseMode HTML, or stray angle brackets fail the send.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}
