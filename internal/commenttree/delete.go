package commenttree

import (
	"slices"

	"campusfeed/internal/model"
)

// SoftDelete returns a copy of comments where id keeps its place but shows the
// deleted placeholder.
func SoftDelete(comments []model.Comment, id int64) []model.Comment {
	out := slices.Clone(comments)
	for i := range out {
		if out[i].ID == id {
			out[i].Body = model.DeletedPlaceholder
			out[i].IsDeleted = true
		}
	}
	return out
}

// HardDelete returns a copy of comments without id. Its replies, if any, turn
// into roots on the next Build.
func HardDelete(comments []model.Comment, id int64) []model.Comment {
	return slices.DeleteFunc(slices.Clone(comments), func(c model.Comment) bool {
		return c.ID == id
	})
}

// ApplyDeleteResult applies the server's delete decision to the flat list.
func ApplyDeleteResult(comments []model.Comment, id int64, res model.DeleteResult) []model.Comment {
	if res.Type == model.SoftDelete {
		return SoftDelete(comments, id)
	}
	return HardDelete(comments, id)
}
