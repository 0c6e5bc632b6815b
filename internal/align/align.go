// Package align computes character-level alignments between two words.
package align

// Kind classifies a single alignment step.
type Kind int

const (
	// Match means both words carry the same rune at the aligned positions.
	Match Kind = iota
	// Substitute means the aligned runes differ.
	Substitute
	// Insert means the input carries an extra rune absent from the correct word.
	Insert
	// Delete means the input is missing a rune of the correct word.
	Delete
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Match:
		return "match"
	case Substitute:
		return "substitute"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// Op is one step of an alignment. Indices are rune offsets; CorrectIdx is -1
// for Insert and InputIdx is -1 for Delete.
type Op struct {
	Kind       Kind
	CorrectIdx int
	InputIdx   int
}

// Align returns one minimum-cost edit path from correct to input, ordered
// left to right. When several paths tie, traceback prefers match, then
// substitute, then insert, then delete.
func Align(correct, input string) []Op {
	c := []rune(correct)
	in := []rune(input)
	dp := costMatrix(c, in)

	ops := make([]Op, 0, max(len(c), len(in)))
	ci, ii := len(c), len(in)
	for ci > 0 || ii > 0 {
		switch {
		case ci > 0 && ii > 0 && c[ci-1] == in[ii-1] && dp[ci][ii] == dp[ci-1][ii-1]:
			ops = append(ops, Op{Kind: Match, CorrectIdx: ci - 1, InputIdx: ii - 1})
			ci--
			ii--
		case ci > 0 && ii > 0 && dp[ci][ii] == dp[ci-1][ii-1]+1:
			ops = append(ops, Op{Kind: Substitute, CorrectIdx: ci - 1, InputIdx: ii - 1})
			ci--
			ii--
		case ii > 0 && dp[ci][ii] == dp[ci][ii-1]+1:
			ops = append(ops, Op{Kind: Insert, CorrectIdx: -1, InputIdx: ii - 1})
			ii--
		default:
			ops = append(ops, Op{Kind: Delete, CorrectIdx: ci - 1, InputIdx: -1})
			ci--
		}
	}
	reverse(ops)
	return ops
}

// Distance counts the non-match steps of an alignment.
func Distance(ops []Op) int {
	n := 0
	for _, op := range ops {
		if op.Kind != Match {
			n++
		}
	}
	return n
}

func costMatrix(c, in []rune) [][]int {
	dp := make([][]int, len(c)+1)
	for i := range dp {
		dp[i] = make([]int, len(in)+1)
		dp[i][0] = i
	}
	for j := 0; j <= len(in); j++ {
		dp[0][j] = j
	}
	for i := 1; i <= len(c); i++ {
		for j := 1; j <= len(in); j++ {
			if c[i-1] == in[j-1] {
				dp[i][j] = dp[i-1][j-1]
				continue
			}
			dp[i][j] = 1 + min(dp[i-1][j-1], dp[i-1][j], dp[i][j-1])
		}
	}
	return dp
}

func reverse(ops []Op) {
	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
}
