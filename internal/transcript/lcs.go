package transcript

// LCSAligner keeps the original sentences that lie on a longest common
// subsequence with the edited transcript. Unlike SetAligner, a sentence
// moved out of order is dropped from one of its positions, since the output
// cannot be reordered. Ties prefer the earliest original sentences.
type LCSAligner struct{}

// Align implements Aligner.
func (LCSAligner) Align(original, edited []SentenceUnit) []Decision {
	n, m := len(original), len(edited)
	decisions := make([]Decision, n)
	for i, unit := range original {
		decisions[i] = Decision{SourceIndex: i, Text: unit.Text}
	}
	if n == 0 || m == 0 {
		return decisions
	}

	a := make([]string, n)
	for i, unit := range original {
		a[i] = Normalize(unit.Text)
	}
	b := make([]string, m)
	for j, unit := range edited {
		b[j] = Normalize(unit.Text)
	}

	// suffix[i][j] is the LCS length of a[i:] and b[j:].
	suffix := make([][]int, n+1)
	for i := range suffix {
		suffix[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				suffix[i][j] = suffix[i+1][j+1] + 1
			case suffix[i+1][j] >= suffix[i][j+1]:
				suffix[i][j] = suffix[i+1][j]
			default:
				suffix[i][j] = suffix[i][j+1]
			}
		}
	}

	for i, j := 0, 0; i < n && j < m; {
		switch {
		case a[i] == b[j]:
			decisions[i].Keep = true
			i++
			j++
		case suffix[i][j+1] >= suffix[i+1][j]:
			j++
		default:
			i++
		}
	}
	return decisions
}
