package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"campusfeed/internal/mockapi"
	"campusfeed/internal/model"
	"campusfeed/internal/view"
)

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through likes, rollback, comments and a poll on the demo backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withSession(ctx, false, func(s *session) error {
				return runDemo(ctx, s)
			})
		},
	}
}

func step(format string, args ...any) {
	fmt.Printf("\n== %s\n", fmt.Sprintf(format, args...))
}

func printFeedRow(feed *view.Feed, postID int64) {
	for _, p := range feed.Posts() {
		if p.ID == postID {
			fmt.Printf("  feed row #%d liked=%t likes=%d comments=%d\n", p.ID, p.IsLiked, p.LikesCount, p.CommentsCount)
			return
		}
	}
}

func runDemo(ctx context.Context, s *session) error {
	const likedPost, threadPost, pollPost = 3, 1, 2

	step("Feed mounted as user %d", s.cfg.UserID)
	feed := view.NewFeed(s.deps())
	if err := feed.Mount(ctx); err != nil {
		return err
	}
	defer feed.Unmount()
	for _, p := range feed.Posts() {
		fmt.Printf("  #%d likes=%d comments=%d %q\n", p.ID, p.LikesCount, p.CommentsCount, p.Body)
	}

	step("Open post %d and like it", likedPost)
	detail, err := mountDetail(ctx, s, likedPost)
	if err != nil {
		return err
	}
	p, err := detail.LikePost(ctx)
	if err != nil {
		return err
	}
	printLike(s, model.PostKey(likedPost), "tentative")
	if err := settle(ctx, p); err != nil {
		return err
	}
	printLike(s, model.PostKey(likedPost), "after")

	step("Back to the feed")
	printFeedRow(feed, likedPost)
	if err := feed.Resume(ctx); err != nil {
		return err
	}
	printFeedRow(feed, likedPost)

	step("Unlike while the network is down")
	s.backend.InjectFailure(mockapi.ErrUnavailable)
	p, err = detail.LikePost(ctx)
	if err != nil {
		return err
	}
	printLike(s, model.PostKey(likedPost), "tentative")
	if err := settle(ctx, p); err == nil {
		return errors.New("expected the like to roll back")
	}
	printLike(s, model.PostKey(likedPost), "after")
	for _, n := range s.notices.Drain() {
		fmt.Printf("  notice: %s\n", n)
	}
	s.backend.InjectFailure(nil)

	step("Thread of post %d", threadPost)
	thread, err := mountDetail(ctx, s, threadPost)
	if err != nil {
		return err
	}
	printThread(thread)

	parent := int64(1)
	c, err := thread.SendComment(ctx, "See you there", &parent)
	if err != nil {
		return err
	}
	fmt.Printf("  replied with comment %d\n", c.ID)
	printThread(thread)

	res, err := thread.DeleteComment(ctx, c.ID)
	if err != nil {
		return err
	}
	fmt.Printf("  deleted comment %d: %s\n", c.ID, res.Type)
	printThread(thread)

	step("Feed picks up the refreshed counters")
	if err := feed.Resume(ctx); err != nil {
		return err
	}
	printFeedRow(feed, threadPost)

	step("Vote in the poll of post %d", pollPost)
	poll, err := mountDetail(ctx, s, pollPost)
	if err != nil {
		return err
	}
	w := poll.Poll()
	if w.HasVoted() {
		fmt.Println("  already voted")
		printPoll(w)
		return nil
	}
	if err := w.Toggle(1); err != nil {
		return err
	}
	p, err = w.Vote(ctx)
	if err != nil {
		return err
	}
	if err := settle(ctx, p); err != nil {
		return err
	}
	printPoll(w)
	return nil
}
