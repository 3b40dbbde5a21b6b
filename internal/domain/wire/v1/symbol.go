package wirev1

// symbolLen is the fixed width of a stock symbol field on both feeds.
const symbolLen = 8

// decodeSymbol trims the trailing space/NUL padding both feeds use to fill
// symbol fields out to symbolLen, preserving internal spaces, and replaces
// any byte outside printable ASCII with the Unicode replacement rune rather
// than failing the record — a corrupt symbol byte does not make the rest
// of the record undecodable.
func decodeSymbol(b []byte) string {
	end := len(b)
	for end > 0 && (b[end-1] == ' ' || b[end-1] == 0) {
		end--
	}
	b = b[:end]

	clean := make([]rune, 0, len(b))
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			clean = append(clean, '�')
			continue
		}
		clean = append(clean, rune(c))
	}
	return string(clean)
}
