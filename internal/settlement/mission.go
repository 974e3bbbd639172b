package settlement

import "sort"

const (
	MinProgress      = 0
	MaxProgress      = 100
	firstPlacePoints = 100
	pointsStep       = 20
	minPoints        = 20
)

// ClampProgress bounds a progress value to [MinProgress, MaxProgress].
func ClampProgress(p int) int {
	if p < MinProgress {
		return MinProgress
	}
	if p > MaxProgress {
		return MaxProgress
	}
	return p
}

// MissionPoints returns the points for the completer at zero-based position rank0.
func MissionPoints(rank0 int) int {
	pts := firstPlacePoints - rank0*pointsStep
	if pts < minPoints {
		return minPoints
	}
	return pts
}

// Mission is a shared goal inside a co-working room. Progress values are
// clamped when they are recorded; a participant has completed the mission
// once their progress reaches MaxProgress.
type Mission struct {
	ID       string
	Title    string
	progress map[string]int
}

func NewMission(id, title string, progress map[string]int) Mission {
	m := Mission{ID: id, Title: title, progress: make(map[string]int, len(progress))}
	for p, v := range progress {
		m.progress[p] = ClampProgress(v)
	}
	return m
}

// WithProgress returns a copy of m with p's progress set to v (clamped).
func (m Mission) WithProgress(p string, v int) Mission {
	next := Mission{ID: m.ID, Title: m.Title, progress: make(map[string]int, len(m.progress)+1)}
	for k, old := range m.progress {
		next.progress[k] = old
	}
	next.progress[p] = ClampProgress(v)
	return next
}

// Progress returns p's recorded progress, 0 when nothing was recorded.
func (m Mission) Progress(p string) int {
	return m.progress[p]
}

func (m Mission) Completed(p string) bool {
	return m.progress[p] >= MaxProgress
}

// ComputeMissionScores awards points per mission to its completers and sums
// them per participant. Completers are ranked by descending progress; ties
// keep roster order. Every roster member is present in the result, and
// progress recorded for someone outside the roster is ignored.
func ComputeMissionScores(missions []Mission, participants []string) ScoreBoard {
	board := newScoreBoard(len(participants))
	for _, p := range participants {
		board.add(p, 0)
	}
	roster := board.order
	for _, m := range missions {
		var completers []string
		for _, p := range roster {
			if m.Completed(p) {
				completers = append(completers, p)
			}
		}
		sort.SliceStable(completers, func(i, j int) bool {
			return m.progress[completers[i]] > m.progress[completers[j]]
		})
		for i, p := range completers {
			board.add(p, MissionPoints(i))
		}
	}
	return board
}
