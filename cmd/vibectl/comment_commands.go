package main

import (
	"fmt"
	"strings"
	"time"

	"moodmate/internal/models"
	"moodmate/internal/thread"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newCommentCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Add, delete or like comments",
	}
	cmd.AddCommand(newCommentAddCommand(ctx))
	cmd.AddCommand(newCommentDeleteCommand(ctx))
	cmd.AddCommand(newCommentLikeCommand(ctx))
	return cmd
}

func newCommentAddCommand(ctx *commandContext) *cobra.Command {
	var replyTo string

	cmd := &cobra.Command{
		Use:   "add <vibe-id> <text>",
		Short: "Comment on a vibe, or reply with --reply",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vibeID, err := parseID("vibe", args[0])
			if err != nil {
				return err
			}
			var parent *uuid.UUID
			if replyTo != "" {
				id, err := parseID("comment", replyTo)
				if err != nil {
					return err
				}
				parent = &id
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			c, err := client.PostComment(cmd.Context(), vibeID, strings.Join(args[1:], " "), parent)
			if err != nil {
				return fmt.Errorf("post comment: %w", err)
			}
			return emit(cmd, ctx, c, func() string { return "Commented " + c.ID.String() })
		},
	}
	cmd.Flags().StringVar(&replyTo, "reply", "", "Parent comment id")
	return cmd
}

func newCommentDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <comment-id>",
		Short: "Delete your comment and its replies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("comment", args[0])
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.DeleteComment(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete comment: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted", id)
			return nil
		},
	}
}

func newCommentLikeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "like <comment-id>",
		Short: "Toggle your like on a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("comment", args[0])
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			state, err := client.ToggleCommentLike(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("toggle comment like: %w", err)
			}
			return emit(cmd, ctx, state, func() string { return likeLine(state) })
		},
	}
}

func newThreadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "thread <vibe-id>",
		Short: "Print a vibe's comments as a reply tree",
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
			tree, err := client.Thread(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("load thread: %w", err)
			}
			return emit(cmd, ctx, tree, func() string { return renderThread(tree) })
		},
	}
}

func renderThread(tree thread.Tree) string {
	if len(tree.Roots) == 0 && len(tree.Orphans) == 0 {
		return "No comments"
	}
	var b strings.Builder
	var walk func(n *thread.Node)
	walk = func(n *thread.Node) {
		b.WriteString(strings.Repeat("  ", n.Depth))
		if n.IsReply {
			b.WriteString("↳ ")
		}
		b.WriteString(commentLine(n.Comment))
		b.WriteByte('\n')
		for _, r := range n.Replies {
			walk(r)
		}
	}
	for _, n := range tree.Roots {
		walk(n)
	}
	if len(tree.Orphans) > 0 {
		b.WriteString("-- replies to deleted comments --\n")
		for _, n := range tree.Orphans {
			walk(n)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func commentLine(c models.Comment) string {
	return fmt.Sprintf("%s: %s  [%d likes, %s, %s]",
		author(c.Profile), c.Content, c.LikesCount, c.CreatedAt.Local().Format(time.DateTime), c.ID)
}
