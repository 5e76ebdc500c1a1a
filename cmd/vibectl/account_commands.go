package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"moodmate/internal/apiclient"
	"moodmate/internal/models"
	"moodmate/internal/viewstate"

	"github.com/spf13/cobra"
)

func newQuotaCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show your monthly share quota",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			q, err := client.Quota(cmd.Context())
			if err != nil {
				return fmt.Errorf("load quota: %w", err)
			}
			return emit(cmd, ctx, q, func() string {
				return renderTable(
					[]string{"Used", "Limit", "Remaining", "Resets"},
					[][]string{{
						strconv.FormatInt(q.Used, 10),
						strconv.Itoa(q.Limit),
						strconv.FormatInt(q.Remaining, 10),
						q.ResetsAt,
					}},
					[]columnAlignment{alignRight, alignRight, alignRight},
				)
			})
		},
	}
}

func newDashboardCommand(ctx *commandContext) *cobra.Command {
	var list string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show your posts, liked vibes and commented vibes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			dash := viewstate.NewDashboard(client, viewstate.Options{})
			if err := dash.Refresh(cmd.Context()); err != nil {
				return err
			}
			s := dash.Snapshot()
			if ctx.jsonOutput() {
				return writeJSON(cmd, models.Dashboard{
					Profile:   s.Profile,
					MyPosts:   s.MyPosts,
					Liked:     s.Liked,
					Commented: s.Commented,
				})
			}

			sections := []struct {
				name  string
				items []models.Playlist
			}{
				{"posts", s.MyPosts},
				{"liked", s.Liked},
				{"commented", s.Commented},
			}
			out := cmd.OutOrStdout()
			if s.Profile != nil {
				fmt.Fprintf(out, "Dashboard for %s\n", author(s.Profile))
			}
			shown := false
			for _, sec := range sections {
				if list != "" && list != sec.name {
					continue
				}
				shown = true
				fmt.Fprintf(out, "\n%s (%d)\n%s\n", strings.ToUpper(sec.name[:1])+sec.name[1:], len(sec.items), vibeTable(sec.items))
			}
			if !shown {
				return fmt.Errorf("unknown list %q: use posts, liked or commented", list)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&list, "list", "", "Only show one list: posts, liked or commented")
	return cmd
}

func newAnalyticsCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Count your shared emotions over recent days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			counts, err := client.Analytics(cmd.Context(), days)
			if err != nil {
				return fmt.Errorf("load analytics: %w", err)
			}
			return emit(cmd, ctx, counts, func() string { return analyticsTable(counts) })
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Window in days (server default when 0)")
	return cmd
}

func analyticsTable(counts []models.EmotionCount) string {
	if len(counts) == 0 {
		return "No vibes in this window"
	}
	sorted := append([]models.EmotionCount(nil), counts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Count > sorted[j].Count })
	peak := sorted[0].Count
	rows := make([][]string, 0, len(sorted))
	for _, c := range sorted {
		bar := 0
		if peak > 0 {
			bar = c.Count * 20 / peak
		}
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Count), strings.Repeat("█", bar)})
	}
	return renderTable([]string{"Emotion", "Count", ""}, rows, []columnAlignment{alignLeft, alignRight})
}

func newProfileCommand(ctx *commandContext) *cobra.Command {
	var in apiclient.ProfileInput

	cmd := &cobra.Command{
		Use:   "profile [user-id]",
		Short: "Show a profile, or update yours with --name/--avatar",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var p *models.Profile
			updating := cmd.Flags().Changed("name") || cmd.Flags().Changed("avatar")
			switch {
			case updating && len(args) > 0:
				return fmt.Errorf("--name and --avatar only update your own profile")
			case updating:
				p, err = client.UpdateProfile(cmd.Context(), in)
			case len(args) == 1:
				id, perr := parseID("user", args[0])
				if perr != nil {
					return perr
				}
				p, err = client.Profile(cmd.Context(), id)
			default:
				return fmt.Errorf("pass a user id or --name/--avatar")
			}
			if err != nil {
				return fmt.Errorf("profile: %w", err)
			}
			return emit(cmd, ctx, p, func() string {
				return renderTable([]string{"ID", "Name", "Avatar"},
					[][]string{{p.ID.String(), p.FullName, p.AvatarURL}}, nil)
			})
		},
	}
	cmd.Flags().StringVar(&in.FullName, "name", "", "Display name")
	cmd.Flags().StringVar(&in.AvatarURL, "avatar", "", "Avatar URL")
	return cmd
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <text>",
		Short: "Detect the mood of text and list matching songs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			res, err := client.AnalyzeText(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("analyze text: %w", err)
			}
			return emit(cmd, ctx, res, func() string {
				rows := make([][]string, 0, len(res.Songs))
				for _, s := range res.Songs {
					rows = append(rows, []string{s.TrackName, s.Artists, s.TrackGenre})
				}
				head := fmt.Sprintf("Mood: %s (%s)", res.Emotion, res.Confidence)
				if len(rows) == 0 {
					return head
				}
				return head + "\n" + renderTable([]string{"Track", "Artists", "Genre"}, rows, nil)
			})
		},
	}
}

func newFlagsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "flags",
		Short: "Show feature flags as the server evaluates them for you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			raw, evaluated, err := client.FeatureFlags(cmd.Context())
			if err != nil {
				return fmt.Errorf("load feature flags: %w", err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{"raw": raw, "evaluated": evaluated})
			}
			names := make([]string, 0, len(raw))
			for name := range raw {
				names = append(names, name)
			}
			sort.Strings(names)
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				rows = append(rows, []string{name, raw[name], yesNo(evaluated[name])})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Flag", "Rule", "On"}, rows, nil))
			return nil
		},
	}
}
