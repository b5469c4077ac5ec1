package ingest

import (
	"sort"

	"twitscan/internal/model"
)

// BuildEntourage merges friend and follower ids into one edge per other
// party, ordered by id. An id present in both lists yields one row with
// both flags set.
func BuildEntourage(userID int64, friends, followers []int64) []model.Entourage {
	edges := make(map[int64]*model.Entourage, len(friends)+len(followers))
	get := func(id int64) *model.Entourage {
		e, ok := edges[id]
		if !ok {
			e = &model.Entourage{UserID: userID, FriendFollowerID: id}
			edges[id] = e
		}
		return e
	}
	for _, id := range friends {
		get(id).Friend = true
	}
	for _, id := range followers {
		get(id).Follower = true
	}
	out := make([]model.Entourage, 0, len(edges))
	for _, e := range edges {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FriendFollowerID < out[j].FriendFollowerID })
	return out
}

// BuildInteractions reconciles what the user favorited, reposted and replied
// to into one row per target post, ordered by post id.
//
// Favorites come from FavoritedIDs and the ids of Favorites. Reposts are the
// user's own posts flagged IsRetweet, pointing at RetweetedStatusID. Replies
// are the user's own posts with InReplyToStatusID set.
func BuildInteractions(raw model.RawUser) []model.Interaction {
	rows := make(map[int64]*model.Interaction)
	get := func(statusID int64) *model.Interaction {
		it, ok := rows[statusID]
		if !ok {
			it = &model.Interaction{UserID: raw.ID, StatusID: statusID}
			rows[statusID] = it
		}
		return it
	}
	for _, id := range raw.FavoritedIDs {
		get(id).Fav = true
	}
	for _, p := range raw.Favorites {
		get(p.ID).Fav = true
	}
	for _, p := range raw.Posts {
		if p.UserID != 0 && p.UserID != raw.ID {
			continue
		}
		if p.IsRetweet && p.RetweetedStatusID != nil {
			get(*p.RetweetedStatusID).Retweet = true
		}
		if p.InReplyToStatusID != nil {
			get(*p.InReplyToStatusID).Comment = true
		}
	}
	delete(rows, 0)
	out := make([]model.Interaction, 0, len(rows))
	for _, it := range rows {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StatusID < out[j].StatusID })
	return out
}
