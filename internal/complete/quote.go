package complete

import "strings"

// Quote renders s for insertion given the quote state the cursor sits
// inside:
//   - normal: backslash-escape shell metacharacters.
//   - single: close the open quote, escape the apostrophe, reopen.
//   - double: backslash-escape double-quote specials ($, `, ", \).
func Quote(s string, state QuoteState) string {
	switch state {
	case QuoteSingle:
		return strings.ReplaceAll(s, "'", `'\''`)
	case QuoteDouble:
		var b strings.Builder
		for _, r := range s {
			switch r {
			case '$', '`', '"', '\\':
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
		return b.String()
	default:
		var b strings.Builder
		for _, r := range s {
			if strings.ContainsRune(shellMeta, r) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
		return b.String()
	}
}

const shellMeta = " \t\n|&;()<>$`\\\"'*?[#~=%!{}"
