package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Favour-nine/Gradr/internal/queue"
)

const maxErrorColumnWidth = 48

func buildQueueStatusRows(counts map[queue.Status]int) [][]string {
	if len(counts) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(counts)+1)
	total := 0
	for _, status := range queue.AllStatuses() {
		count, ok := counts[status]
		if !ok {
			continue
		}
		total += count
		rows = append(rows, []string{formatStatusLabel(string(status)), fmt.Sprintf("%d", count)})
	}

	// Unknown statuses would indicate outside tampering; show them anyway.
	known := make(map[queue.Status]struct{}, len(queue.AllStatuses()))
	for _, status := range queue.AllStatuses() {
		known[status] = struct{}{}
	}
	extra := make([]string, 0)
	for status := range counts {
		if _, ok := known[status]; !ok {
			extra = append(extra, string(status))
		}
	}
	sort.Strings(extra)
	for _, status := range extra {
		total += counts[queue.Status(status)]
		rows = append(rows, []string{formatStatusLabel(status), fmt.Sprintf("%d", counts[queue.Status(status)])})
	}

	rows = append(rows, []string{"Total", fmt.Sprintf("%d", total)})
	return rows
}

func buildQueueListRows(jobs []*queue.Job) [][]string {
	if len(jobs) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", job.ID),
			displayTitle(job.Folder),
			filepath.Base(job.SourcePath),
			formatStatusLabel(string(job.Status)),
			fmt.Sprintf("%d", job.Attempts),
			formatDisplayTime(job.AvailableAt),
			formatErrorColumn(job.LastError),
		})
	}
	return rows
}

// displayTitle turns a folder slug like "math101-midterm" into a readable
// heading.
func displayTitle(folder string) string {
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range folder {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return folder
	}
	return cases.Title(language.Und).String(title)
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatDisplayTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format("2006-01-02 15:04")
}

func formatErrorColumn(message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return "-"
	}
	// Stale-recovery notes stack on newlines; only the latest line fits.
	if idx := strings.LastIndexByte(message, '\n'); idx >= 0 {
		message = strings.TrimSpace(message[idx+1:])
	}
	if len(message) > maxErrorColumnWidth {
		return message[:maxErrorColumnWidth-3] + "..."
	}
	return message
}
