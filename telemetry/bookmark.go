package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHuntBreakthrough BookmarkType = "hunt_breakthrough"
	BookmarkFoxRecovery      BookmarkType = "fox_recovery"
	BookmarkRabbitCrash      BookmarkType = "rabbit_crash"
	BookmarkStableEcosystem  BookmarkType = "stable_ecosystem"
	BookmarkExtinction       BookmarkType = "extinction"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Generation  int          `csv:"generation"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using l.
func (b Bookmark) LogBookmark(l *slog.Logger) {
	l.Info("bookmark",
		"type", string(b.Type),
		"generation", b.Generation,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentFoxMin       int  // minimum fox count in recent history
	recentRabbitPeak   int  // peak rabbit count in recent history
	stableWindowsCount int  // consecutive windows with stable populations
	extinct            bool // extinction already reported
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable ecosystem detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Hunt breakthrough: hunt success > 2x rolling average
		if b := bd.checkHuntBreakthrough(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Fox recovery: was ≤3, now ≥3x that
		if b := bd.checkFoxRecovery(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Rabbit crash: dropped >30% from recent peak
		if b := bd.checkRabbitCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Stable ecosystem: both populations present with low variance over 5+ windows
		if b := bd.checkStableEcosystem(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	if b := bd.checkExtinction(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Update history
	bd.addToHistory(stats)

	// Track fox minimum and rabbit peak
	if stats.Foxes < bd.recentFoxMin || bd.recentFoxMin == 0 {
		bd.recentFoxMin = stats.Foxes
	}
	if stats.Rabbits > bd.recentRabbitPeak {
		bd.recentRabbitPeak = stats.Rabbits
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the stored windows oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]WindowStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkHuntBreakthrough(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	// Rolling average hunt success over all attacks in history
	var totalKills, totalAttempts int
	for _, h := range history {
		kills := h.FoxKills + h.BearKills
		totalKills += kills
		totalAttempts += kills + h.Escapes
	}

	if totalAttempts == 0 || totalKills == 0 {
		return nil
	}

	avg := float64(totalKills) / float64(totalAttempts)
	current := stats.HuntSuccess
	if current > avg*2.0 && stats.FoxKills+stats.BearKills >= 3 {
		return &Bookmark{
			Type:        BookmarkHuntBreakthrough,
			Generation:  stats.WindowEnd,
			Description: fmt.Sprintf("Hunt success %.2f is %.1fx average (%.2f)", current, current/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkFoxRecovery(stats WindowStats) *Bookmark {
	if bd.recentFoxMin == 0 || bd.recentFoxMin > 3 {
		return nil
	}

	threshold := bd.recentFoxMin * 3
	if stats.Foxes >= threshold && stats.Foxes >= 6 {
		// Reset the minimum after triggering
		oldMin := bd.recentFoxMin
		bd.recentFoxMin = stats.Foxes

		return &Bookmark{
			Type:        BookmarkFoxRecovery,
			Generation:  stats.WindowEnd,
			Description: fmt.Sprintf("Fox population recovered from %d to %d", oldMin, stats.Foxes),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkRabbitCrash(stats WindowStats) *Bookmark {
	if bd.recentRabbitPeak == 0 {
		return nil
	}

	dropPercent := 1.0 - float64(stats.Rabbits)/float64(bd.recentRabbitPeak)
	if dropPercent > 0.30 && stats.Rabbits < bd.recentRabbitPeak-10 {
		// Reset peak after crash
		oldPeak := bd.recentRabbitPeak
		bd.recentRabbitPeak = stats.Rabbits

		return &Bookmark{
			Type:        BookmarkRabbitCrash,
			Generation:  stats.WindowEnd,
			Description: fmt.Sprintf("Rabbits crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.Rabbits),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	// Need both populations present
	if stats.Rabbits < 10 || stats.Foxes < 3 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	rabbits := make([]float64, len(recent))
	foxes := make([]float64, len(recent))
	for i, h := range recent {
		rabbits[i] = float64(h.Rabbits)
		foxes[i] = float64(h.Foxes)
	}

	// Low variance: coefficient of variation < 20%
	if cv2(rabbits) < 0.04 && cv2(foxes) < 0.04 { // CV^2 < 0.04 means CV < 0.2
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Generation:  stats.WindowEnd,
			Description: fmt.Sprintf("Stable ecosystem with %d rabbits, %d foxes over 5+ windows", stats.Rabbits, stats.Foxes),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkExtinction(stats WindowStats) *Bookmark {
	if bd.extinct || (stats.Foxes > 0 && stats.Rabbits > 0) {
		return nil
	}
	bd.extinct = true

	gone := "foxes"
	if stats.Rabbits == 0 {
		gone = "rabbits"
		if stats.Foxes == 0 {
			gone = "foxes and rabbits"
		}
	}
	return &Bookmark{
		Type:        BookmarkExtinction,
		Generation:  stats.WindowEnd,
		Description: fmt.Sprintf("No %s left", gone),
	}
}

// cv2 returns the squared coefficient of variation (population variance
// over squared mean), or 0 for a zero mean.
func cv2(x []float64) float64 {
	mean, variance := stat.PopMeanVariance(x, nil)
	if mean == 0 {
		return 0
	}
	return variance / (mean * mean)
}
