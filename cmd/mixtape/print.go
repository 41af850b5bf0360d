package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	ansi "github.com/k0kubun/go-ansi"
	progressbar "github.com/schollz/progressbar/v3"

	"github.com/harmoni-labs/mixtape/internal/core/domain"
	"github.com/harmoni-labs/mixtape/internal/knn"
)

const (
	playlistProgressLabel = "[cyan]Fetching[reset] playlist songs..."
	likedProgressLabel    = "[cyan]Fetching[reset] Liked Songs..."
)

// themeASCII mirrors progressbar.ThemeASCII, which is only exported by
// progressbar versions that need a newer Go toolchain than this module targets.
var themeASCII = progressbar.Theme{
	Saucer:        "=",
	SaucerHead:    ">",
	SaucerPadding: ".",
	BarStart:      "[",
	BarEnd:        "]",
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func printSongs(songs []domain.Song) {
	tw := newTable()
	fmt.Fprintln(tw, "#\tSONG\tARTISTS\tPOPULARITY")
	for i, s := range songs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", i+1, s.Name, strings.Join(s.Artists, ", "), s.Popularity)
	}
	tw.Flush()
}

func printNeighbors(neighbors []knn.Neighbor, withDistance bool) {
	if !withDistance {
		printSongs(knn.Songs(neighbors))
		return
	}
	tw := newTable()
	fmt.Fprintln(tw, "#\tSONG\tARTISTS\tDISTANCE")
	for i, n := range neighbors {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.4f\n", i+1, n.Song.Name, strings.Join(n.Song.Artists, ", "), n.Distance)
	}
	tw.Flush()
}

func printTrends(kind string, entries []domain.TrendEntry) {
	tw := newTable()
	fmt.Fprintf(tw, "#\t%s\tSONGS\tSHARE\n", kind)
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f%%\n", i+1, e.Name, e.Count, e.Share*100)
	}
	tw.Flush()
}

func printStats(stats domain.FeatureStats) {
	rows := []struct {
		name string
		get  func(domain.AudioFeatures) float64
	}{
		{"loudness", func(f domain.AudioFeatures) float64 { return f.Loudness }},
		{"danceability", func(f domain.AudioFeatures) float64 { return f.Danceability }},
		{"energy", func(f domain.AudioFeatures) float64 { return f.Energy }},
		{"instrumentalness", func(f domain.AudioFeatures) float64 { return f.Instrumentalness }},
		{"tempo", func(f domain.AudioFeatures) float64 { return f.Tempo }},
		{"valence", func(f domain.AudioFeatures) float64 { return f.Valence }},
	}

	tw := newTable()
	fmt.Fprintln(tw, "FEATURE\tMIN\tMAX\tMEAN")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f\n",
			row.name, row.get(stats.Min), row.get(stats.Max), row.get(stats.Mean))
	}
	tw.Flush()
}

func printExtremes(extremes []domain.SongExtremes) {
	tw := newTable()
	fmt.Fprintln(tw, "FEATURE\tLOWEST\tHIGHEST")
	for _, e := range extremes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Feature, songLabel(e.Lowest), songLabel(e.Highest))
	}
	tw.Flush()
}

func songLabel(s domain.Song) string {
	return fmt.Sprintf("%s (%s)", s.Name, strings.Join(s.Artists, ", "))
}

// fetchProgress renders an ASCII progress bar while song pages stream in.
// The real total only arrives with the first page, so the bar is created
// lazily and resized on every report.
func fetchProgress(description string) func(done, total int) {
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(
				total,
				progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetTheme(themeASCII),
				progressbar.OptionFullWidth(),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription(description),
			)
		}
		bar.ChangeMax(total)
		_ = bar.Set(done)
		if done >= total {
			fmt.Fprintln(ansi.NewAnsiStdout())
		}
	}
}

// splitList turns a comma-separated flag value into trimmed entries,
// dropping empty ones.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
