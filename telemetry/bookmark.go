package telemetry

import (
	"fmt"
	"log/slog"
	"math"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkBabyBoom           BookmarkType = "baby_boom"
	BookmarkPopulationCrash    BookmarkType = "population_crash"
	BookmarkPopulationRecovery BookmarkType = "population_recovery"
	BookmarkExtinction         BookmarkType = "extinction"
	BookmarkSelfishnessShift   BookmarkType = "selfishness_shift"
	BookmarkStableWarren       BookmarkType = "stable_warren"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        uint64       `csv:"tick"`
	SimTimeSec  float64      `csv:"sim_time"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"sim_time", b.SimTimeSec,
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

	recentMin          int  // minimum population since the last recovery
	recentPeak         int  // peak population since the last crash
	extinct            bool // extinction already reported
	stableWindowsCount int  // consecutive windows with a stable population
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable warren detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
		recentMin:   -1,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark
	add := func(b *Bookmark) {
		if b != nil {
			b.Tick = stats.WindowEndTick
			b.SimTimeSec = stats.SimTimeSec
			bookmarks = append(bookmarks, *b)
		}
	}

	if b := bd.checkExtinction(stats); b != nil {
		add(b)
	} else if bd.historyFull || bd.historyIdx > 0 {
		add(bd.checkBabyBoom(stats))
		add(bd.checkRecovery(stats))
		add(bd.checkCrash(stats))
		add(bd.checkSelfishnessShift(stats))
		add(bd.checkStableWarren(stats))
	}

	bd.addToHistory(stats)

	if bd.recentMin < 0 || stats.Population < bd.recentMin {
		bd.recentMin = stats.Population
	}
	if stats.Population > bd.recentPeak {
		bd.recentPeak = stats.Population
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

// recent returns up to n windows in chronological order.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	if n > count {
		n = count
	}
	out := make([]WindowStats, n)
	for i := 0; i < n; i++ {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

func (bd *BookmarkDetector) checkExtinction(stats WindowStats) *Bookmark {
	if stats.Population > 0 {
		bd.extinct = false
		return nil
	}
	if bd.extinct {
		return nil
	}
	bd.extinct = true
	return &Bookmark{
		Type:        BookmarkExtinction,
		Description: "The warren died out",
	}
}

func (bd *BookmarkDetector) checkBabyBoom(stats WindowStats) *Bookmark {
	history := bd.recent(bd.historySize)
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Births
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.Births) > avg*2.0 && stats.Births >= 5 {
		return &Bookmark{
			Type:        BookmarkBabyBoom,
			Description: fmt.Sprintf("%d births is %.1fx average (%.1f)", stats.Births, float64(stats.Births)/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkRecovery(stats WindowStats) *Bookmark {
	if bd.recentMin < 1 || bd.recentMin > 3 {
		return nil
	}

	if stats.Population >= bd.recentMin*3 && stats.Population >= 6 {
		oldMin := bd.recentMin
		bd.recentMin = stats.Population
		return &Bookmark{
			Type:        BookmarkPopulationRecovery,
			Description: fmt.Sprintf("Population recovered from %d to %d", oldMin, stats.Population),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Population)/float64(bd.recentPeak)
	if drop > 0.30 && stats.Population < bd.recentPeak-10 {
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Population
		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Population),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSelfishnessShift(stats WindowStats) *Bookmark {
	history := bd.recent(bd.historySize)
	if len(history) < 3 || stats.Population < 10 {
		return nil
	}

	var sum float64
	for _, h := range history {
		sum += h.SelfishnessMean
	}
	avg := sum / float64(len(history))

	if shift := stats.SelfishnessMean - avg; math.Abs(shift) > 0.15 {
		return &Bookmark{
			Type:        BookmarkSelfishnessShift,
			Description: fmt.Sprintf("Mean selfishness moved %+.2f to %.2f", shift, stats.SelfishnessMean),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStableWarren(stats WindowStats) *Bookmark {
	if stats.Population < 10 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.recent(4)
	if len(history) < 4 {
		return nil
	}

	var sum float64
	for _, h := range history {
		sum += float64(h.Population)
	}
	mean := sum / 4

	var variance float64
	for _, h := range history {
		d := float64(h.Population) - mean
		variance += d * d
	}
	variance /= 4

	// CV^2 < 0.04 means CV < 0.2
	if mean > 0 && variance/(mean*mean) < 0.04 {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 {
		return &Bookmark{
			Type:        BookmarkStableWarren,
			Description: fmt.Sprintf("Stable warren of %d agents over 5+ windows", stats.Population),
		}
	}
	return nil
}
