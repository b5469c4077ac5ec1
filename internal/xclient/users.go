package xclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"twitscan/internal/model"
)

// UserRef names an account by id or, when ID is zero, by handle.
type UserRef struct {
	ID         int64
	ScreenName string
}

func (r UserRef) String() string {
	if r.ID != 0 {
		return strconv.FormatInt(r.ID, 10)
	}
	return "@" + r.ScreenName
}

func (r UserRef) params() map[string]string {
	if r.ID != 0 {
		return map[string]string{"user_id": strconv.FormatInt(r.ID, 10)}
	}
	return map[string]string{"screen_name": r.ScreenName}
}

// FetchOptions bound how much of an account is pulled.
type FetchOptions struct {
	MaxPosts int
	// MaxFollowers rejects accounts with more followers; zero disables the check.
	MaxFollowers  int
	SkipFavorites bool
}

// ProtectedError reports an account whose timeline is not readable.
type ProtectedError struct{ ScreenName string }

func (e *ProtectedError) Error() string { return fmt.Sprintf("@%s is protected", e.ScreenName) }

// TooManyFollowersError reports an account over FetchOptions.MaxFollowers.
type TooManyFollowersError struct {
	ScreenName string
	Followers  int
	Max        int
}

func (e *TooManyFollowersError) Error() string {
	return fmt.Sprintf("@%s has %d followers (max %d)", e.ScreenName, e.Followers, e.Max)
}

// IsPermanent reports errors that retrying will not fix. A 429 that
// outlived the client's own backoff is still transient.
func IsPermanent(err error) bool {
	var pe *ProtectedError
	var tm *TooManyFollowersError
	var api *APIError
	if errors.As(err, &pe) || errors.As(err, &tm) {
		return true
	}
	return errors.As(err, &api) && api.Status >= 400 && api.Status < 500 && api.Status != http.StatusTooManyRequests
}

type apiUser struct {
	IDStr           string `json:"id_str"`
	ScreenName      string `json:"screen_name"`
	CreatedAt       string `json:"created_at"`
	Verified        bool   `json:"verified"`
	Protected       bool   `json:"protected"`
	FavouritesCount int    `json:"favourites_count"`
	StatusesCount   int    `json:"statuses_count"`
	FriendsCount    int    `json:"friends_count"`
	FollowersCount  int    `json:"followers_count"`
	ProfileImageURL string `json:"profile_image_url_https"`
}

// GetUser looks up the account profile.
func (c *HTTPClient) GetUser(ctx context.Context, ref UserRef) (model.RawUser, error) {
	var u apiUser
	if err := c.get(ctx, "/users/show.json", ref.params(), &u); err != nil {
		return model.RawUser{}, err
	}
	id, err := strconv.ParseInt(u.IDStr, 10, 64)
	if err != nil {
		return model.RawUser{}, fmt.Errorf("user %s: bad id %q", ref, u.IDStr)
	}
	created, _ := time.Parse(time.RubyDate, u.CreatedAt)
	return model.RawUser{
		ID:             id,
		ScreenName:     u.ScreenName,
		CreatedAt:      created.UTC(),
		Verified:       u.Verified,
		Protected:      u.Protected,
		FavoritesCount: u.FavouritesCount,
		StatusCount:    u.StatusesCount,
		FriendsCount:   u.FriendsCount,
		FollowersCount: u.FollowersCount,
		PictureURL:     u.ProfileImageURL,
	}, nil
}

// FriendIDs pages through friends/ids.
func (c *HTTPClient) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	return c.pagedIDs(ctx, "/friends/ids.json", userID)
}

// FollowerIDs pages through followers/ids.
func (c *HTTPClient) FollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	return c.pagedIDs(ctx, "/followers/ids.json", userID)
}

func (c *HTTPClient) pagedIDs(ctx context.Context, endpoint string, userID int64) ([]int64, error) {
	var out []int64
	cursor := "-1"
	for cursor != "0" {
		var page struct {
			IDs        []string `json:"ids"`
			NextCursor string   `json:"next_cursor_str"`
		}
		params := map[string]string{
			"user_id":       strconv.FormatInt(userID, 10),
			"cursor":        cursor,
			"count":         "5000",
			"stringify_ids": "true",
		}
		if err := c.get(ctx, endpoint, params, &page); err != nil {
			return out, err
		}
		for _, s := range page.IDs {
			if id, err := strconv.ParseInt(s, 10, 64); err == nil {
				out = append(out, id)
			}
		}
		cursor = page.NextCursor
		if cursor == "" {
			break
		}
	}
	return out, nil
}

// FetchUser assembles everything the gateway ingests for one account:
// profile, friend and follower ids, recent posts and favorites.
func (c *HTTPClient) FetchUser(ctx context.Context, ref UserRef, opts FetchOptions) (model.RawUser, error) {
	u, err := c.GetUser(ctx, ref)
	if err != nil {
		return model.RawUser{}, err
	}
	if u.Protected {
		return model.RawUser{}, &ProtectedError{ScreenName: u.ScreenName}
	}
	if opts.MaxFollowers > 0 && u.FollowersCount > opts.MaxFollowers {
		return model.RawUser{}, &TooManyFollowersError{ScreenName: u.ScreenName, Followers: u.FollowersCount, Max: opts.MaxFollowers}
	}
	if u.FriendIDs, err = c.FriendIDs(ctx, u.ID); err != nil {
		return model.RawUser{}, err
	}
	if u.FollowerIDs, err = c.FollowerIDs(ctx, u.ID); err != nil {
		return model.RawUser{}, err
	}
	if u.Posts, err = c.UserTimeline(ctx, u.ID, opts.MaxPosts); err != nil {
		return model.RawUser{}, err
	}
	if !opts.SkipFavorites {
		if u.Favorites, err = c.Favorites(ctx, u.ID, opts.MaxPosts); err != nil {
			return model.RawUser{}, err
		}
		for _, p := range u.Favorites {
			u.FavoritedIDs = append(u.FavoritedIDs, p.ID)
		}
	}
	return u, nil
}
