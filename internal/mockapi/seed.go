package mockapi

import (
	"time"

	"campusfeed/internal/model"
)

// Demo user ids
const (
	DemoAlice int64 = 1
	DemoBob   int64 = 2
	DemoCarol int64 = 3
)

// SeedDemo fills b with a small campus feed: three posts, one of them with a
// poll, a comment thread that includes a dangling reply, and two market
// listings.
func SeedDemo(b *Backend) {
	base := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)

	b.AddPost(model.Post{
		ID: 1, AuthorID: DemoAlice, Body: "Library is open until midnight during exams",
		LikesCount: 10, CommentsCount: 4, ViewsCount: 120, CreatedAt: base,
	})
	b.AddPost(model.Post{
		ID: 2, AuthorID: DemoBob, Body: "Where should the next meetup be?",
		LikesCount: 3, ViewsCount: 45, CreatedAt: base.Add(time.Hour),
		Poll: &model.Poll{
			ID:       1,
			Question: "Meetup location",
			PollTally: model.PollTally{
				Options: []model.PollOption{
					{Text: "Main hall", Votes: 4},
					{Text: "Cafeteria", Votes: 2},
					{Text: "Online", Votes: 0},
				},
				TotalVotes: 6,
			},
		},
	})
	b.AddPost(model.Post{
		ID: 3, AuthorID: DemoAlice, Body: "Lost a blue umbrella near building B",
		IsAnonymous: true, LikesCount: 0, ViewsCount: 8, CreatedAt: base.Add(2 * time.Hour),
	})

	b.LikePost(DemoAlice, 1)

	parent := func(id int64) *int64 { return &id }
	b.AddComment(model.Comment{ID: 1, PostID: 1, AuthorID: DemoBob, Body: "Great news", LikesCount: 2, CreatedAt: base.Add(10 * time.Minute)})
	b.AddComment(model.Comment{ID: 2, PostID: 1, ParentID: parent(1), AuthorID: DemoAlice, Body: "Thanks!", CreatedAt: base.Add(11 * time.Minute)})
	b.AddComment(model.Comment{ID: 3, PostID: 1, ParentID: parent(99), AuthorID: DemoCarol, Body: "Reply to a removed comment", CreatedAt: base.Add(12 * time.Minute)})
	b.AddComment(model.Comment{ID: 4, PostID: 1, ParentID: parent(2), AuthorID: DemoBob, Body: "Any time", CreatedAt: base.Add(13 * time.Minute)})

	b.AddListing(model.Listing{ID: 1, SellerID: DemoCarol, Title: "Calculus textbook, 3rd edition", Price: 1500, FavoritesCount: 2, CreatedAt: base.Add(3 * time.Hour)})
	b.AddListing(model.Listing{ID: 2, SellerID: DemoBob, Title: "Desk lamp", Price: 700, CreatedAt: base.Add(4 * time.Hour)})
}
