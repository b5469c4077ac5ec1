package xclient

import (
	"context"
	"strconv"
	"time"

	"twitscan/internal/model"
)

type apiStatus struct {
	IDStr                string `json:"id_str"`
	CreatedAt            string `json:"created_at"`
	FullText             string `json:"full_text"`
	Text                 string `json:"text"`
	FavoriteCount        int    `json:"favorite_count"`
	RetweetCount         int    `json:"retweet_count"`
	InReplyToStatusIDStr string `json:"in_reply_to_status_id_str"`
	InReplyToUserIDStr   string `json:"in_reply_to_user_id_str"`
	User                 struct {
		IDStr string `json:"id_str"`
	} `json:"user"`
	RetweetedStatus *struct {
		IDStr string `json:"id_str"`
	} `json:"retweeted_status"`
	Entities struct {
		Hashtags []struct {
			Text string `json:"text"`
		} `json:"hashtags"`
		UserMentions []struct {
			IDStr string `json:"id_str"`
		} `json:"user_mentions"`
		URLs []struct {
			ExpandedURL string `json:"expanded_url"`
		} `json:"urls"`
		Media []struct {
			MediaURLHTTPS string `json:"media_url_https"`
		} `json:"media"`
	} `json:"entities"`
}

// UserTimeline returns up to limit recent posts, reposts included.
func (c *HTTPClient) UserTimeline(ctx context.Context, userID int64, limit int) ([]model.RawPost, error) {
	return c.statuses(ctx, "/statuses/user_timeline.json", map[string]string{
		"user_id":     strconv.FormatInt(userID, 10),
		"count":       strconv.Itoa(clamp(limit, 1, 200)),
		"include_rts": "true",
		"tweet_mode":  "extended",
	})
}

// Favorites returns up to limit posts the user favorited.
func (c *HTTPClient) Favorites(ctx context.Context, userID int64, limit int) ([]model.RawPost, error) {
	return c.statuses(ctx, "/favorites/list.json", map[string]string{
		"user_id":    strconv.FormatInt(userID, 10),
		"count":      strconv.Itoa(clamp(limit, 1, 200)),
		"tweet_mode": "extended",
	})
}

func (c *HTTPClient) statuses(ctx context.Context, endpoint string, params map[string]string) ([]model.RawPost, error) {
	var raw []apiStatus
	if err := c.get(ctx, endpoint, params, &raw); err != nil {
		return nil, err
	}
	out := make([]model.RawPost, 0, len(raw))
	for _, s := range raw {
		if p, ok := s.toRaw(); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s apiStatus) toRaw() (model.RawPost, bool) {
	id, err := strconv.ParseInt(s.IDStr, 10, 64)
	if err != nil || id == 0 {
		return model.RawPost{}, false
	}
	// Parse example: Mon Jan 02 15:04:05 -0700 2006
	ts, _ := time.Parse(time.RubyDate, s.CreatedAt)
	text := s.FullText
	if text == "" {
		text = s.Text
	}
	p := model.RawPost{
		ID:                id,
		UserID:            parseID(s.User.IDStr),
		Text:              text,
		CreatedAt:         ts.UTC(),
		FavoriteCount:     s.FavoriteCount,
		RetweetCount:      s.RetweetCount,
		InReplyToStatusID: optID(s.InReplyToStatusIDStr),
		InReplyToUserID:   optID(s.InReplyToUserIDStr),
	}
	if s.RetweetedStatus != nil {
		p.IsRetweet = true
		p.RetweetedStatusID = optID(s.RetweetedStatus.IDStr)
	}
	for _, h := range s.Entities.Hashtags {
		p.Hashtags = append(p.Hashtags, h.Text)
	}
	for _, m := range s.Entities.UserMentions {
		if id := parseID(m.IDStr); id != 0 {
			p.MentionIDs = append(p.MentionIDs, id)
		}
	}
	for _, u := range s.Entities.URLs {
		p.URLs = append(p.URLs, u.ExpandedURL)
	}
	if len(s.Entities.Media) > 0 {
		p.MediaURL = s.Entities.Media[0].MediaURLHTTPS
	}
	return p, true
}

func parseID(s string) int64 {
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}

func optID(s string) *int64 {
	if id := parseID(s); id != 0 {
		return &id
	}
	return nil
}
