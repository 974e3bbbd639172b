package settlement

import "sort"

// ScoreBoard is an ordered participant -> score mapping. Participants are
// enumerated in the order they were first added, which is what ranking ties
// fall back to. The zero value is an empty board.
type ScoreBoard struct {
	order  []string
	scores map[string]int
}

// ScoreEntry is one participant's score, used to build boards and to
// serialise them in order.
type ScoreEntry struct {
	Participant string `json:"participant" yaml:"participant"`
	Score       int    `json:"score" yaml:"score"`
}

func newScoreBoard(capacity int) ScoreBoard {
	return ScoreBoard{
		order:  make([]string, 0, capacity),
		scores: make(map[string]int, capacity),
	}
}

// ScoreBoardOf builds a board from entries. A participant listed twice keeps
// its first position and accumulates both scores.
func ScoreBoardOf(entries ...ScoreEntry) ScoreBoard {
	b := newScoreBoard(len(entries))
	for _, e := range entries {
		b.add(e.Participant, e.Score)
	}
	return b
}

// ScoreBoardFromMap builds a board whose order follows participants.
// Map keys not listed in participants are appended in lexical order.
func ScoreBoardFromMap(participants []string, scores map[string]int) ScoreBoard {
	b := newScoreBoard(len(scores))
	for _, p := range participants {
		if _, ok := b.scores[p]; ok {
			continue
		}
		b.add(p, scores[p])
	}
	var rest []string
	for p := range scores {
		if _, ok := b.scores[p]; !ok {
			rest = append(rest, p)
		}
	}
	sort.Strings(rest)
	for _, p := range rest {
		b.add(p, scores[p])
	}
	return b
}

// add must only be called on boards owned by the caller.
func (b *ScoreBoard) add(p string, delta int) {
	if b.scores == nil {
		b.scores = make(map[string]int)
	}
	if _, ok := b.scores[p]; !ok {
		b.order = append(b.order, p)
	}
	b.scores[p] += delta
}

// With returns a copy of b with p's score set to v.
func (b ScoreBoard) With(p string, v int) ScoreBoard {
	next := newScoreBoard(len(b.order) + 1)
	for _, k := range b.order {
		next.add(k, b.scores[k])
	}
	if _, ok := next.scores[p]; !ok {
		next.order = append(next.order, p)
	}
	next.scores[p] = v
	return next
}

func (b ScoreBoard) Get(p string) int { return b.scores[p] }

func (b ScoreBoard) Has(p string) bool {
	_, ok := b.scores[p]
	return ok
}

func (b ScoreBoard) Len() int { return len(b.order) }

func (b ScoreBoard) Participants() []string { return append([]string(nil), b.order...) }

// Entries returns the board in order.
func (b ScoreBoard) Entries() []ScoreEntry {
	out := make([]ScoreEntry, 0, len(b.order))
	for _, p := range b.order {
		out = append(out, ScoreEntry{Participant: p, Score: b.scores[p]})
	}
	return out
}

// Map returns an unordered copy of the scores.
func (b ScoreBoard) Map() map[string]int {
	out := make(map[string]int, len(b.scores))
	for k, v := range b.scores {
		out[k] = v
	}
	return out
}
