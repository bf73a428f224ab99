package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/filemgr/internal/dirstat"
	"github.com/idelchi/filemgr/internal/explorer"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

func newTabWriter(writer io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)
}

// PrintJSON writes v as indented JSON.
func PrintJSON(v any, writer io.Writer) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

func created(sec int64) string {
	if sec == 0 {
		return "-"
	}

	return humanize.Time(time.Unix(sec, 0))
}

// PrintListing outputs a directory listing as a table.
func PrintListing(listing *explorer.Listing, writer io.Writer) error {
	w := newTabWriter(writer)

	fmt.Fprintln(w, "NAME\tSIZE\tCREATED\tTYPE")

	for _, entry := range listing.Files {
		kind := "file"
		if entry.IsDir {
			kind = "dir"
		}

		if entry.MIME != "" {
			kind = entry.MIME
		}

		size := humanize.IBytes(uint64(entry.Size)) //nolint:gosec // Sizes are never negative
		if entry.IsDir {
			size = "-"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", entry.Name, size, created(entry.Created), kind)
	}

	fmt.Fprintf(w, "\n%d files, %d folders\n", listing.TotalFiles, listing.TotalFolders)

	return w.Flush()
}

// SizeResult is the JSON shape of the size command.
type SizeResult struct {
	Path  string `json:"path"`
	Size  uint64 `json:"size"`
	Depth int    `json:"depth"`
}

// PrintSize outputs a computed size.
func PrintSize(result SizeResult, writer io.Writer) error {
	_, err := fmt.Fprintf(writer, "%s (%d bytes)\n", humanize.IBytes(result.Size), result.Size)

	return err
}

// PrintLines outputs one value per line.
func PrintLines(lines []string, writer io.Writer) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(writer, line); err != nil {
			return err
		}
	}

	return nil
}

// PrintStats outputs a usage report in human-readable table format.
func PrintStats(stats *dirstat.Stats, writer io.Writer) error {
	w := newTabWriter(writer)

	percent := func(size int64) float64 {
		if stats.TotalBytes == 0 {
			return 0
		}

		return 100.0 * float64(size) / float64(stats.TotalBytes)
	}

	if !stats.DirectoryMode {
		fmt.Fprintln(w, "Top extensions:\t\t")

		exts := make([]string, 0, len(stats.ExtStats))
		for ext := range stats.ExtStats {
			exts = append(exts, ext)
		}

		sort.Slice(exts, func(i, j int) bool {
			return stats.ExtStats[exts[i]].Size > stats.ExtStats[exts[j]].Size
		})

		for i, ext := range exts {
			stat := stats.ExtStats[ext]
			if ext == "" {
				ext = `""`
			}

			fmt.Fprintf(w, "  %d) %s:\t%d files, %s (%.1f%%)\n",
				i+1, ext, stat.Count, humanize.IBytes(uint64(stat.Size)), percent(stat.Size)) //nolint:gosec // Sizes are never negative
		}

		fmt.Fprintln(w, "\nTop files:\t\t")
	} else {
		fmt.Fprintln(w, "Top directories:\t\t")
	}

	for i, entry := range stats.Top {
		fmt.Fprintf(w, "  %d) '%s'\t%s (%.1f%%)\n",
			i+1, entry.Path, humanize.IBytes(uint64(entry.Size)), percent(entry.Size)) //nolint:gosec // Sizes are never negative
	}

	fmt.Fprintln(w, "\nStats:\t\t")

	if stats.DirectoryMode {
		fmt.Fprintf(w, "Total directories:\t%d\n", stats.FileCount)
	} else {
		fmt.Fprintf(w, "Total files:\t%d\n", stats.FileCount)
	}

	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n",
		humanize.IBytes(uint64(stats.TotalBytes)), stats.TotalBytes) //nolint:gosec // Sizes are never negative

	if stats.ErrorCount > 0 {
		fmt.Fprintf(w, "Unreadable:\t%d\n", stats.ErrorCount)
	}

	fmt.Fprintf(w, "\nElapsed:\t%v\n", stats.Elapsed.Round(time.Millisecond))

	return w.Flush()
}
