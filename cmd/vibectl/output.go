package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"moodmate/internal/models"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit prints v as JSON when requested, otherwise runs table.
func emit(cmd *cobra.Command, ctx *commandContext, v any, table func() string) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, v)
	}
	fmt.Fprintln(cmd.OutOrStdout(), table())
	return nil
}

func vibeTable(items []models.Playlist) string {
	if len(items) == 0 {
		return "No vibes"
	}
	rows := make([][]string, 0, len(items))
	for _, p := range items {
		rows = append(rows, []string{
			p.ID.String(),
			p.Emotion,
			ellipsize(deref(p.Tagline), 40),
			author(p.Profile),
			strconv.FormatInt(p.Likes, 10),
			strconv.FormatInt(p.Comments, 10),
			yesNo(p.IsLiked),
			p.CreatedAt.Local().Format(time.DateTime),
		})
	}
	return renderTable(
		[]string{"ID", "Emotion", "Tagline", "By", "Likes", "Comments", "Liked", "Shared"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
}

func vibeDetail(p *models.Playlist) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", p.Emotion, p.ID)
	if t := deref(p.Tagline); t != "" {
		fmt.Fprintf(&b, "%q\n", t)
	}
	fmt.Fprintf(&b, "by %s on %s\n", author(p.Profile), p.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(&b, "%d likes, %d comments, liked: %s\n", p.Likes, p.Comments, yesNo(p.IsLiked))
	for _, l := range p.Links {
		fmt.Fprintf(&b, "  %s\n", l)
	}
	return strings.TrimRight(b.String(), "\n")
}

func author(p *models.Profile) string {
	if p == nil || p.FullName == "" {
		return "-"
	}
	return p.FullName
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ellipsize(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
