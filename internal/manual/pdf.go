package manual

import "regexp"

// pageObject matches page object markers in the raw PDF stream. The \b
// keeps /Type /Pages (the page tree node) from counting.
var pageObject = regexp.MustCompile(`/Type\s*/Page\b`)

// countPagesIn counts page objects by scanning the raw document bytes.
// Works for unencrypted PDFs with plain object streams; documents using
// compressed object streams come back 0 and the listing shows no count.
func countPagesIn(data []byte) int {
	return len(pageObject.FindAll(data, -1))
}
