package main

import (
	"fmt"

	"moodmate/internal/apiclient"
	"moodmate/internal/models"

	"github.com/spf13/cobra"
)

func newFeedCommand(ctx *commandContext) *cobra.Command {
	var q apiclient.FeedQuery

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "List community vibes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			items, err := client.Feed(cmd.Context(), q)
			if err != nil {
				return fmt.Errorf("load feed: %w", err)
			}
			return emit(cmd, ctx, items, func() string { return vibeTable(items) })
		},
	}

	cmd.Flags().StringVar(&q.Sort, "sort", "", "Order: newest or popular")
	cmd.Flags().StringVarP(&q.Query, "query", "q", "", "Filter by emotion or tagline")
	cmd.Flags().IntVarP(&q.Limit, "limit", "n", 0, "Maximum vibes to list")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <vibe-id>",
		Short: "Show one vibe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("vibe", args[0])
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			p, err := client.Vibe(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("load vibe: %w", err)
			}
			return emit(cmd, ctx, p, func() string { return vibeDetail(p) })
		},
	}
}

func vibeInputFlags(cmd *cobra.Command, in *apiclient.VibeInput, tagline *string) {
	cmd.Flags().StringVarP(&in.Emotion, "emotion", "e", "", "Emotion label")
	cmd.Flags().StringVarP(tagline, "tagline", "t", "", "Short caption, up to 60 characters")
	cmd.Flags().StringArrayVarP(&in.Links, "link", "l", nil, "Playlist link (repeatable)")
}

func newShareCommand(ctx *commandContext) *cobra.Command {
	var in apiclient.VibeInput
	var tagline string

	cmd := &cobra.Command{
		Use:   "share",
		Short: "Share a new vibe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Tagline = optionalString(cmd.Flags().Changed("tagline"), tagline)
			client, err := ctx.client()
			if err != nil {
				return err
			}
			p, err := client.Share(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("share vibe: %w", err)
			}
			return emit(cmd, ctx, p, func() string { return "Shared " + p.ID.String() })
		},
	}
	vibeInputFlags(cmd, &in, &tagline)
	_ = cmd.MarkFlagRequired("emotion")
	_ = cmd.MarkFlagRequired("link")
	return cmd
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	var in apiclient.VibeInput
	var tagline string

	cmd := &cobra.Command{
		Use:   "edit <vibe-id>",
		Short: "Replace the emotion, tagline and links of your vibe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("vibe", args[0])
			if err != nil {
				return err
			}
			in.Tagline = optionalString(cmd.Flags().Changed("tagline"), tagline)
			client, err := ctx.client()
			if err != nil {
				return err
			}
			p, err := client.UpdateVibe(cmd.Context(), id, in)
			if err != nil {
				return fmt.Errorf("update vibe: %w", err)
			}
			return emit(cmd, ctx, p, func() string { return vibeDetail(p) })
		},
	}
	vibeInputFlags(cmd, &in, &tagline)
	_ = cmd.MarkFlagRequired("emotion")
	_ = cmd.MarkFlagRequired("link")
	return cmd
}

func newLikeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "like <vibe-id>",
		Short: "Toggle your like on a vibe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("vibe", args[0])
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			state, err := client.ToggleLike(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("toggle like: %w", err)
			}
			return emit(cmd, ctx, state, func() string { return likeLine(state) })
		},
	}
}

func likeLine(state models.LikeState) string {
	verb := "Unliked"
	if state.Liked {
		verb = "Liked"
	}
	return fmt.Sprintf("%s (%d likes)", verb, state.Likes)
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <vibe-id>",
		Short: "Delete your vibe with its comments and likes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("vibe", args[0])
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.DeleteVibe(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete vibe: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted", id)
			return nil
		},
	}
}
