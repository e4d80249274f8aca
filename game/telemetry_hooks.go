package game

import (
	"log/slog"
	"path/filepath"

	"github.com/pthm-cable/warren/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.elapsed) {
		return
	}

	g.takeSample()
	stats := g.collector.Flush(g.tick, g.elapsed, g.timeOfDay, &g.sample)
	perfStats := g.perfCollector.Stats()
	g.lastStats = stats

	if g.opts.StatsCallback != nil {
		g.opts.StatsCallback(stats)
	}

	if g.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.opts.LogStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		g.saveBookmarkSnapshot(bm)
	}
}

// takeSample refills the census sample from the live world.
func (g *Game) takeSample() {
	g.sample.Reset()
	query := g.world.AgentFilter().Query()
	for query.Next() {
		_, _, a := query.Get()
		g.sample.Add(a)
	}
	g.sample.Food = g.world.FoodCount()
	g.sample.Burrows = g.world.BurrowCount()
	g.sample.Particles = g.world.ParticleCount()
}

// snapshotPath returns where a bookmark snapshot goes, or "" when disabled.
func (g *Game) snapshotPath(bm telemetry.Bookmark) string {
	if g.opts.SnapshotDir != "" {
		return filepath.Join(g.opts.SnapshotDir, telemetry.SnapshotName(bm))
	}
	return g.outputManager.SnapshotPath(bm)
}

// saveBookmarkSnapshot writes the current state for a bookmark.
func (g *Game) saveBookmarkSnapshot(bm telemetry.Bookmark) {
	path := g.snapshotPath(bm)
	if path == "" {
		return
	}

	state := g.Export()
	if err := telemetry.SaveSnapshot(path, &state); err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", g.tick, "bookmark", string(bm.Type))
}
