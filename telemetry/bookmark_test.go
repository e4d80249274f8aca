package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_BabyBoom(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// Steady trickle of births
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{
			WindowEndTick: uint64(i * 600),
			Population:    40,
			Births:        3,
		})
	}

	bookmarks := bd.Check(WindowStats{
		WindowEndTick: 3000,
		Population:    50,
		Births:        12, // 4x average
	})
	if !hasBookmark(bookmarks, BookmarkBabyBoom) {
		t.Error("expected baby_boom bookmark")
	}
	for _, bm := range bookmarks {
		if bm.Tick != 3000 {
			t.Errorf("bookmark tick = %d, want 3000", bm.Tick)
		}
	}
}

func TestBookmarkDetector_BabyBoomNeedsVolume(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{Population: 10, Births: 1})
	}

	// 4x the average but still only a handful of births
	bookmarks := bd.Check(WindowStats{Population: 12, Births: 4})
	if hasBookmark(bookmarks, BookmarkBabyBoom) {
		t.Error("baby_boom should need at least 5 births")
	}
}

func TestBookmarkDetector_PopulationCrash(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{
			WindowEndTick: uint64(i * 600),
			Population:    100,
		})
	}

	bookmarks := bd.Check(WindowStats{
		WindowEndTick: 3000,
		Population:    50, // 50% drop
	})
	if !hasBookmark(bookmarks, BookmarkPopulationCrash) {
		t.Error("expected population_crash bookmark")
	}

	// Peak resets after a crash, so staying low does not fire again
	bookmarks = bd.Check(WindowStats{WindowEndTick: 3600, Population: 48})
	if hasBookmark(bookmarks, BookmarkPopulationCrash) {
		t.Error("crash reported twice for the same drop")
	}
}

func TestBookmarkDetector_PopulationRecovery(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{
			WindowEndTick: uint64(i * 600),
			Population:    2, // critical low
		})
	}

	bookmarks := bd.Check(WindowStats{
		WindowEndTick: 2400,
		Population:    10, // 5x the minimum of 2
	})
	if !hasBookmark(bookmarks, BookmarkPopulationRecovery) {
		t.Error("expected population_recovery bookmark")
	}
}

func TestBookmarkDetector_ExtinctionOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(WindowStats{Population: 5})

	if !hasBookmark(bd.Check(WindowStats{Population: 0}), BookmarkExtinction) {
		t.Fatal("expected extinction bookmark")
	}
	if len(bd.Check(WindowStats{Population: 0})) != 0 {
		t.Error("extinction reported twice")
	}
}

func TestBookmarkDetector_SelfishnessShift(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{Population: 40, SelfishnessMean: 0.3})
	}

	bookmarks := bd.Check(WindowStats{Population: 40, SelfishnessMean: 0.6})
	if !hasBookmark(bookmarks, BookmarkSelfishnessShift) {
		t.Error("expected selfishness_shift bookmark")
	}
}

func TestBookmarkDetector_StableWarren(t *testing.T) {
	bd := NewBookmarkDetector(10)

	fired := 0
	for i := 0; i < 12; i++ {
		bookmarks := bd.Check(WindowStats{
			WindowEndTick: uint64(i * 600),
			Population:    60,
		})
		if hasBookmark(bookmarks, BookmarkStableWarren) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("stable_warren fired %d times, want 1", fired)
	}
}

func TestBookmarkDetector_RecentIsChronological(t *testing.T) {
	bd := NewBookmarkDetector(5)
	for i := 1; i <= 7; i++ {
		bd.addToHistory(WindowStats{WindowEndTick: uint64(i)})
	}

	got := bd.recent(3)
	for i, want := range []uint64{5, 6, 7} {
		if got[i].WindowEndTick != want {
			t.Errorf("recent[%d] = %d, want %d", i, got[i].WindowEndTick, want)
		}
	}
	if n := len(bd.recent(10)); n != 5 {
		t.Errorf("recent(10) returned %d windows, want 5", n)
	}
}
