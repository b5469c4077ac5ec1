package model

import "time"

// RawUser is the record the remote client returns for one scanned account.
type RawUser struct {
	ID             int64
	ScreenName     string
	CreatedAt      time.Time
	Verified       bool
	Protected      bool
	FavoritesCount int
	StatusCount    int
	FriendsCount   int
	FollowersCount int
	PictureURL     string

	FriendIDs   []int64
	FollowerIDs []int64
	// Posts is the bounded timeline, reposts included.
	Posts []RawPost
	// Favorites holds favorited posts when the client returned them in full.
	Favorites    []RawPost
	FavoritedIDs []int64
}

// RawPost is the record the remote client returns for one status.
type RawPost struct {
	ID                int64
	UserID            int64
	Text              string
	CreatedAt         time.Time
	FavoriteCount     int
	RetweetCount      int
	InReplyToStatusID *int64
	InReplyToUserID   *int64
	IsRetweet         bool
	RetweetedStatusID *int64
	MentionIDs        []int64
	Hashtags          []string
	URLs              []string
	MediaURL          string
}

// User returns the storable part of r.
func (r RawUser) User() User {
	return User{
		ID:             r.ID,
		ScreenName:     r.ScreenName,
		CreatedAt:      r.CreatedAt.UTC(),
		Verified:       r.Verified,
		FavoritesCount: r.FavoritesCount,
		StatusCount:    r.StatusCount,
		FriendsCount:   r.FriendsCount,
		FollowersCount: r.FollowersCount,
		PictureURL:     r.PictureURL,
	}
}

// Post returns the storable part of r.
func (r RawPost) Post() Post {
	return Post{
		ID:                r.ID,
		UserID:            r.UserID,
		Text:              r.Text,
		CreatedAt:         r.CreatedAt.UTC(),
		FavoriteCount:     r.FavoriteCount,
		RetweetCount:      r.RetweetCount,
		InReplyToStatusID: r.InReplyToStatusID,
		InReplyToUserID:   r.InReplyToUserID,
		IsRetweet:         r.IsRetweet,
		RetweetedStatusID: r.RetweetedStatusID,
		MediaURL:          r.MediaURL,
	}
}
