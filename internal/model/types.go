package model

import "time"

// User is a scanned account. Counters are a snapshot taken at scan time.
type User struct {
	ID             int64     `json:"user_id"`
	ScreenName     string    `json:"screen_name"`
	CreatedAt      time.Time `json:"created_at"`
	Verified       bool      `json:"verified"`
	FavoritesCount int       `json:"favorites_count"`
	StatusCount    int       `json:"status_count"`
	FriendsCount   int       `json:"friends_count"`
	FollowersCount int       `json:"followers_count"`
	PictureURL     string    `json:"picture_url,omitempty"`
}

// Post is a stored status. UserID need not resolve to a stored User.
type Post struct {
	ID                int64     `json:"status_id"`
	UserID            int64     `json:"user_id"`
	Text              string    `json:"text"`
	CreatedAt         time.Time `json:"created_at"`
	FavoriteCount     int       `json:"favorite_count"`
	RetweetCount      int       `json:"retweet_count"`
	InReplyToStatusID *int64    `json:"in_reply_to_status_id,omitempty"`
	InReplyToUserID   *int64    `json:"in_reply_to_user_id,omitempty"`
	IsRetweet         bool      `json:"is_retweet"`
	RetweetedStatusID *int64    `json:"retweeted_status_id,omitempty"`
	MediaURL          string    `json:"media_url,omitempty"`
}

// Mention references a mentioned account id, scanned or not.
type Mention struct {
	ID       int64 `json:"mention_id"`
	StatusID int64 `json:"status_id"`
	UserID   int64 `json:"user_id"`
}

// Hashtag is one occurrence of a tag in a post.
type Hashtag struct {
	ID       int64  `json:"hashtag_id"`
	StatusID int64  `json:"status_id"`
	Name     string `json:"hashtag_name"`
}

type Link struct {
	ID       int64  `json:"link_id"`
	StatusID int64  `json:"status_id"`
	URL      string `json:"link"`
}

// Entourage is the single edge between a subject and another account.
// Friend means the subject follows the other party, Follower the reverse.
// At least one flag is always set.
type Entourage struct {
	ID               int64 `json:"entourage_id"`
	UserID           int64 `json:"user_id"`
	FriendFollowerID int64 `json:"friend_follower_id"`
	Friend           bool  `json:"friend"`
	Follower         bool  `json:"follower"`
}

// Interaction collapses every kind of engagement a user had with one post.
type Interaction struct {
	ID       int64 `json:"interaction_id"`
	UserID   int64 `json:"user_id"`
	StatusID int64 `json:"status_id"`
	Fav      bool  `json:"fav"`
	Retweet  bool  `json:"retweet"`
	Comment  bool  `json:"comment"`
}
