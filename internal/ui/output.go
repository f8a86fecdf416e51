package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/iishyfishyy/vibematch/internal/catalog"
	"github.com/iishyfishyy/vibematch/internal/history"
	"github.com/iishyfishyy/vibematch/internal/search"
)

// ShowSuccess displays a success message
func ShowSuccess(message string) {
	green := color.New(color.FgGreen, color.Bold)
	green.Printf("✓ %s\n", message)
}

// ShowError displays an error message
func ShowError(message string) {
	red := color.New(color.FgRed, color.Bold)
	red.Printf("✗ %s\n", message)
}

// ShowWarning displays a warning message
func ShowWarning(message string) {
	yellow := color.New(color.FgYellow)
	yellow.Printf("! %s\n", message)
}

// ShowInfo displays an info message
func ShowInfo(message string) {
	blue := color.New(color.FgBlue)
	blue.Println(message)
}

// ShowSection prints a bold heading
func ShowSection(title string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Printf("\n%s\n", title)
}

// scoreColor grades a cosine score for display
func scoreColor(score float64) *color.Color {
	switch {
	case score >= 0.7:
		return color.New(color.FgGreen, color.Bold)
	case score >= 0.4:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgHiBlack)
	}
}

// PrintResult writes the ranked matches of one query
func PrintResult(w io.Writer, result *search.QueryResult) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(w, "\nQuery: %s\n", result.Query)

	if len(result.Matches) == 0 {
		fmt.Fprintln(w, "  No matches.")
	}
	for i, m := range result.Matches {
		fmt.Fprintf(w, "  %d. %s ", i+1, m.Name)
		scoreColor(m.Score).Fprintf(w, "(%.3f)\n", m.Score)
		fmt.Fprintf(w, "     %s\n", m.Description)
	}

	gray := color.New(color.FgHiBlack)
	gray.Fprintf(w, "  %.2fs\n", result.ElapsedSeconds())
}

// PrintItems lists catalog items with their tags
func PrintItems(w io.Writer, items []catalog.Item) {
	for _, item := range items {
		fmt.Fprintf(w, "• %s\n", item.Name)
		fmt.Fprintf(w, "   %s\n", item.Description)
		if len(item.Tags) > 0 {
			fmt.Fprintf(w, "   Tags: %s\n", strings.Join(item.Tags, ", "))
		}
	}
}

// PrintHistory writes recorded rows grouped under their query
func PrintHistory(w io.Writer, rows []history.Row) {
	var last string
	for i, r := range rows {
		if i == 0 || r.Query != last {
			cyan := color.New(color.FgCyan, color.Bold)
			cyan.Fprintf(w, "\n%s", r.Query)
			fmt.Fprintf(w, " (%.2fs)\n", r.TimeTakenSeconds)
			last = r.Query
		}
		fmt.Fprintf(w, "  %s ", r.Name)
		scoreColor(r.Score).Fprintf(w, "%.3f\n", r.Score)
	}
}

// FormatAgo formats a time.Time as "X ago"
func FormatAgo(t time.Time) string {
	return formatDuration(time.Since(t))
}

func formatDuration(duration time.Duration) string {
	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		minutes := int(duration.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	} else if duration < 24*time.Hour {
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}

	days := int(duration.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
