package resolve

import (
	"strings"

	"github.com/sells-group/planfill-cli/internal/model"
)

// relatedSuffixes are tried, in order, after the name itself and its
// "Main"-stripped base.
var relatedSuffixes = [...]string{"Age", "Amt", "Amount", "Perc", "Percent", "Dollar", "Dollars"}

// RelatedText finds display text for a linkname: the name's own text, then
// the text of its base when the name ends in "Main", then the text of the
// full name extended by each numeric, percentage, or dollar suffix. Returns
// "" when nothing matches; callers treat that as a normal miss.
func RelatedText(name string, flags model.FlagSet) string {
	if t := flags.TextOf(name); t != "" {
		return t
	}
	if base, ok := strings.CutSuffix(name, "Main"); ok {
		if t := flags.TextOf(base); t != "" {
			return t
		}
	}
	for _, suf := range relatedSuffixes {
		if t := flags.TextOf(name + suf); t != "" {
			return t
		}
	}
	return ""
}
