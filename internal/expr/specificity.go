package expr

// Pattern-construct head names recognized by the genericity scoring.
const (
	NameBlank             = "System`Blank"
	NameBlankSequence     = "System`BlankSequence"
	NameBlankNullSequence = "System`BlankNullSequence"
	NamePattern           = "System`Pattern"
	NameAlternatives      = "System`Alternatives"
	NameOptional          = "System`Optional"
)

// Genericity scores how unspecific a pattern is. Literal structure
// contributes nothing; pattern constructs add weight, with wider
// constructs (sequence blanks) weighing more. Rules default to this
// score as their precedence key, so more specific patterns are tried
// before generic ones.
func Genericity(e Expr) int64 {
	switch v := e.(type) {
	case Symbol, String, Integer:
		return 0
	case *Normal:
		var score int64
		switch v.HeadName() {
		case NameBlank:
			score = 2
		case NameBlankSequence:
			score = 3
		case NameBlankNullSequence:
			score = 4
		case NameAlternatives:
			score = 1
		case NameOptional:
			score = 2
		}
		score += Genericity(v.Head())
		for _, el := range v.Elements() {
			score += Genericity(el)
		}
		return score
	default:
		return 0
	}
}
