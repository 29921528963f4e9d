package scan

// matcher tracks a rolling partial match of a literal against the
// character stream, together with the longest candidate seen so far. The
// candidate state lives in one struct so that every reset keeps the
// diagnostic bookkeeping in sync.
type matcher struct {
	lit     []rune
	matched int      // number of literal runes currently matched
	start   Location // where the current candidate began

	closest      int // longest candidate length observed
	closestStart Location
}

func newMatcher(literal string) *matcher {
	return &matcher{lit: []rune(literal)}
}

// feed advances the match with c, whose position before consumption is
// loc. done reports that the literal has been matched in full. flushed
// holds characters that turned out not to belong to a match (including
// the runes of a candidate that just died); callers accumulating text
// must keep them.
func (m *matcher) feed(c rune, loc Location) (done bool, flushed []rune) {
	if c == m.lit[m.matched] {
		if m.matched == 0 {
			m.start = loc
		}
		m.matched++
		return m.matched == len(m.lit), nil
	}

	if m.matched == 0 {
		return false, []rune{c}
	}

	flushed = append(flushed, m.lit[:m.matched]...)
	m.noteClosest()
	m.matched = 0

	// The mismatching character may itself start a new candidate.
	if c == m.lit[0] {
		m.start = loc
		m.matched = 1
		return m.matched == len(m.lit), flushed
	}
	return false, append(flushed, c)
}

// noteClosest folds the current candidate into the closest-match record
// if it is the longest seen.
func (m *matcher) noteClosest() {
	if m.matched > m.closest {
		m.closest = m.matched
		m.closestStart = m.start
	}
}

// fail builds the failure for an exhausted stream. An outstanding partial
// match still counts toward the closest diagnostic.
func (m *matcher) fail(expected string) *UnterminatedError {
	m.noteClosest()
	err := &UnterminatedError{Expected: expected}
	if m.closest > 0 {
		err.Closest = string(m.lit[:m.closest])
		err.ClosestLocation = m.closestStart
	}
	return err
}
