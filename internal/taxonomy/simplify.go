package taxonomy

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxDisplayLength is the length above which Elide shortens a lineage
const MaxDisplayLength = 30

const ellipsis = "..."

// Simplify abbreviates a rank that repeats the start of the next one:
// "Haemulidae Haemulon sp." becomes "H. Haemulon sp.".
func Simplify(lineage string) string {
	tokens := strings.Fields(lineage)
	for i := 0; i+1 < len(tokens); i++ {
		if similar(tokens[i], tokens[i+1]) {
			tokens[i] = initial(tokens[i])
		}
	}
	return strings.Join(tokens, " ")
}

// SimplifyAndElide simplifies a lineage and, when it is still longer than
// MaxDisplayLength, keeps the first token and as many trailing tokens as
// fit after an ellipsis
func SimplifyAndElide(lineage string) string {
	return Elide(Simplify(lineage), MaxDisplayLength)
}

// Elide shortens s to at most limit characters by dropping middle tokens.
// The first and last tokens are always kept.
func Elide(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	tokens := strings.Fields(s)
	if len(tokens) < 3 {
		return s
	}

	head := tokens[0] + " " + ellipsis
	tail := []string{tokens[len(tokens)-1]}
	length := utf8.RuneCountInString(head) + 1 + utf8.RuneCountInString(tail[0])
	for i := len(tokens) - 2; i > 0; i-- {
		next := length + 1 + utf8.RuneCountInString(tokens[i])
		if next > limit {
			break
		}
		tail = append([]string{tokens[i]}, tail...)
		length = next
	}
	if len(tail) == len(tokens)-1 {
		return s
	}
	return head + " " + strings.Join(tail, " ")
}

// similar holds when both words share a prefix of a quarter of their
// combined length
func similar(a, b string) bool {
	k := (len(a) + len(b)) / 4
	if k == 0 || k > len(a) || k > len(b) {
		return false
	}
	return a[:k] == b[:k]
}

func initial(word string) string {
	r, _ := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(r)) + "."
}
