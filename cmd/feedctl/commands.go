package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"campusfeed/internal/model"
	"campusfeed/internal/optimistic"
	"campusfeed/internal/view"
)

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

// mountDetail opens a post's detail view, which loads the post and its
// comments into the store.
func mountDetail(ctx context.Context, s *session, postID int64) (*view.PostDetail, error) {
	d := view.NewPostDetail(s.deps(), postID)
	if err := d.Mount(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func likeCmd(remote *bool) *cobra.Command {
	var commentID int64

	cmd := &cobra.Command{
		Use:   "like <post-id>",
		Short: "Toggle the like on a post or one of its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID(args[0], "post")
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			return withSession(ctx, *remote, func(s *session) error {
				d, err := mountDetail(ctx, s, postID)
				if err != nil {
					return err
				}

				key := model.PostKey(postID)
				if commentID != 0 {
					key = model.CommentKey(commentID)
				}
				printLike(s, key, "before")

				var p *optimistic.Pending
				if commentID != 0 {
					p, err = d.LikeComment(ctx, commentID)
				} else {
					p, err = d.LikePost(ctx)
				}
				if err != nil {
					return err
				}
				printLike(s, key, "tentative")

				err = settle(ctx, p)
				printLike(s, key, "after")
				return err
			})
		},
	}

	cmd.Flags().Int64Var(&commentID, "comment", 0, "Like this comment of the post instead of the post")
	return cmd
}

func printLike(s *session, key model.Key, label string) {
	snap, _ := s.store.Get(key)
	fmt.Printf("%-9s %s liked=%t likes=%d\n", label, key, snap.IsLiked, snap.LikesCount)
}

func favoriteCmd(remote *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <listing-id>",
		Short: "Add a market listing to favorites or remove it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listingID, err := parseID(args[0], "listing")
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			return withSession(ctx, *remote, func(s *session) error {
				listing, err := s.client.GetListing(ctx, listingID)
				if err != nil {
					return err
				}
				s.store.Seed(listing.Key(), model.ListingPatch(listing))
				fmt.Printf("%s (%d)\n", listing.Title, listing.Price)
				printFavorite(s, listing.Key(), "before")

				p, err := s.mutator.ToggleFavorite(ctx, listingID)
				if err != nil {
					return err
				}
				printFavorite(s, listing.Key(), "tentative")

				err = settle(ctx, p)
				printFavorite(s, listing.Key(), "after")
				return err
			})
		},
	}
}

func printFavorite(s *session, key model.Key, label string) {
	snap, _ := s.store.Get(key)
	fmt.Printf("%-9s %s favorited=%t favorites=%d\n", label, key, snap.IsLiked, snap.LikesCount)
}

func voteCmd(remote *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "vote <post-id> <option-index>...",
		Short: "Vote in the poll of a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID(args[0], "post")
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			return withSession(ctx, *remote, func(s *session) error {
				d, err := mountDetail(ctx, s, postID)
				if err != nil {
					return err
				}
				w := d.Poll()
				if w == nil {
					return fmt.Errorf("post %d has no poll", postID)
				}

				for _, a := range args[1:] {
					idx, err := strconv.Atoi(a)
					if err != nil {
						return fmt.Errorf("invalid option index %q", a)
					}
					if err := w.Toggle(idx); err != nil {
						return err
					}
				}

				p, err := w.Vote(ctx)
				if err != nil {
					return err
				}
				if err := settle(ctx, p); err != nil {
					return err
				}
				printPoll(w)
				return nil
			})
		},
	}
}

func printPoll(w *view.PollWidget) {
	t := w.Tally()
	fmt.Printf("%s (%d voters)\n", w.Question(), t.TotalVotes)
	for i, o := range t.Options {
		mark := " "
		for _, v := range t.UserVotes {
			if v == i {
				mark = "*"
			}
		}
		fmt.Printf("  %s [%d] %-20s %3d  %5.1f%%\n", mark, i, o.Text, o.Votes, o.Percentage)
	}
}

func editCmd(remote *bool) *cobra.Command {
	var commentID int64

	cmd := &cobra.Command{
		Use:   "edit <post-id> <body>",
		Short: "Edit a post or one of its comments",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID(args[0], "post")
			if err != nil {
				return err
			}
			body := strings.Join(args[1:], " ")
			ctx := cmd.Context()

			return withSession(ctx, *remote, func(s *session) error {
				d, err := mountDetail(ctx, s, postID)
				if err != nil {
					return err
				}

				edit := d.EditPost
				if commentID != 0 {
					edit = func(ctx context.Context, body string) (*optimistic.Pending, error) {
						return d.EditComment(ctx, commentID, body)
					}
				}
				p, err := edit(ctx, body)
				if err != nil {
					return err
				}
				return settle(ctx, p)
			})
		},
	}

	cmd.Flags().Int64Var(&commentID, "comment", 0, "Edit this comment of the post instead of the post")
	return cmd
}

func commentCmd(remote *bool) *cobra.Command {
	var parentID int64

	cmd := &cobra.Command{
		Use:   "comment <post-id> <body>",
		Short: "Comment on a post, or reply with --parent",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID(args[0], "post")
			if err != nil {
				return err
			}
			body := strings.Join(args[1:], " ")
			ctx := cmd.Context()

			return withSession(ctx, *remote, func(s *session) error {
				d, err := mountDetail(ctx, s, postID)
				if err != nil {
					return err
				}

				var parent *int64
				if parentID != 0 {
					parent = &parentID
				}
				c, err := d.SendComment(ctx, body, parent)
				if err != nil {
					return err
				}

				fmt.Printf("comment %d created, post now has %d comments\n", c.ID, d.Post().CommentsCount)
				printThread(d)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&parentID, "parent", 0, "Reply to this comment")
	return cmd
}

func deleteCmd(remote *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <post-id> <comment-id>",
		Short: "Delete one of your comments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID(args[0], "post")
			if err != nil {
				return err
			}
			commentID, err := parseID(args[1], "comment")
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			return withSession(ctx, *remote, func(s *session) error {
				d, err := mountDetail(ctx, s, postID)
				if err != nil {
					return err
				}
				res, err := d.DeleteComment(ctx, commentID)
				if err != nil {
					return err
				}
				fmt.Printf("comment %d: %s\n", commentID, res.Type)
				printThread(d)
				return nil
			})
		},
	}
}

func treeCmd(remote *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <post-id>",
		Short: "Print a post with its comment thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID(args[0], "post")
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			return withSession(ctx, *remote, func(s *session) error {
				d, err := mountDetail(ctx, s, postID)
				if err != nil {
					return err
				}

				post := d.Post()
				fmt.Printf("#%d %s\n", post.ID, post.Body)
				fmt.Printf("   likes=%d comments=%d views=%d liked=%t\n",
					post.LikesCount, post.CommentsCount, post.ViewsCount, post.IsLiked)
				if w := d.Poll(); w != nil {
					printPoll(w)
				}
				printThread(d)
				return nil
			})
		},
	}
}

func printThread(d *view.PostDetail) {
	for _, e := range d.Thread() {
		reply := ""
		if e.CanReply {
			reply = " [reply]"
		}
		edited := ""
		if e.Comment.IsEdited {
			edited = " (edited)"
		}
		fmt.Printf("%s- #%d %s%s  ♥%d%s\n",
			strings.Repeat("  ", e.Depth), e.Comment.ID, e.Comment.Body, edited, e.Comment.LikesCount, reply)
	}
}
