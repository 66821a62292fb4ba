package render

import (
	"html"
	"regexp"
)

// furiganaRE matches "base[reading]" pairs, skipping anything inside an
// HTML tag. An optional leading space is swallowed so "漢字 かん[じ]"
// style input does not leave a stray gap before the ruby element.
var furiganaRE = regexp.MustCompile(` ?([^ >]+?)\[(.+?)\]`)

// applyFilter transforms a resolved field value. Unknown filters pass the
// value through unchanged, same as no filter at all.
func applyFilter(filter, value string, revealAnswer bool) string {
	switch filter {
	case "furigana":
		return furiganaRE.ReplaceAllString(value, "<ruby>$1<rt>$2</rt></ruby>")
	case "type":
		return typeFilter(value, revealAnswer)
	default:
		return value
	}
}

// typeFilter renders the typed-answer widget. On the question side it is
// an empty input; on the answer side the field value is shown together
// with a hidden span the client compares the typed answer against.
func typeFilter(value string, revealAnswer bool) string {
	if !revealAnswer {
		return `<input type="text" class="type-answer" placeholder="Type answer...">`
	}
	return value + `<span id="typeans-correct" style="display:none;">` +
		html.EscapeString(value) + `</span>`
}
