package vocab

// essentialWords is the fixed target-vocabulary reference list. Order
// matters: ungenerated essential words are prioritized in list order.
var essentialWords = []string{
	"actually", "although", "amount", "approach", "available",
	"aware", "basically", "benefit", "certain", "challenge",
	"common", "consider", "current", "decide", "depend",
	"describe", "detail", "develop", "discuss", "effort",
	"entire", "especially", "exactly", "expect", "experience",
	"explain", "familiar", "figure", "handle", "however",
	"improve", "instead", "involve", "issue", "maintain",
	"manage", "mention", "necessary", "obviously", "occur",
	"opportunity", "particular", "perhaps", "prefer", "prepare",
	"probably", "process", "provide", "purpose", "realize",
	"recently", "require", "respond", "several", "significant",
	"similar", "situation", "solution", "suggest", "suppose",
	"though", "throughout", "understand", "usually", "whether",
}

var essentialSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(essentialWords))
	for _, word := range essentialWords {
		set[word] = struct{}{}
	}
	return set
}()

// IsEssential reports whether the word belongs to the reference list.
func IsEssential(word string) bool {
	_, ok := essentialSet[word]
	return ok
}
