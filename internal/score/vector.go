package score

import "twitscan/internal/interact"

// Vector is the raw proximity between two users. Ratios are
// 2|A∩B| / (|A|+|B|), zero when both sets are empty.
type Vector struct {
	UserA int64 `json:"user_a"`
	UserB int64 `json:"user_b"`

	CommonEntourage int     `json:"common_entourage"`
	CommonFriends   int     `json:"common_friends"`
	CommonFollowers int     `json:"common_followers"`
	EntourageSizeA  int     `json:"entourage_size_a"`
	EntourageSizeB  int     `json:"entourage_size_b"`
	EntourageRatio  float64 `json:"entourage_ratio"`

	CommonHashtags int     `json:"common_hashtags"`
	HashtagSizeA   int     `json:"hashtag_size_a"`
	HashtagSizeB   int     `json:"hashtag_size_b"`
	HashtagRatio   float64 `json:"hashtag_ratio"`

	MentionsAB    int `json:"mentions_ab"`
	MentionsBA    int `json:"mentions_ba"`
	TotalMentions int `json:"total_mentions"`

	AB             interact.Counts `json:"ab"`
	BA             interact.Counts `json:"ba"`
	TotalFavorites int             `json:"total_favorites"`
	TotalRetweets  int             `json:"total_retweets"`
	TotalComments  int             `json:"total_comments"`
}

func ratio(common, sizeA, sizeB int) float64 {
	den := sizeA + sizeB
	if den == 0 {
		return 0
	}
	return 2 * float64(common) / float64(den)
}
