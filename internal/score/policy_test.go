package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitscan/internal/interact"
)

func sample() Vector {
	return Vector{
		CommonFriends: 2, CommonFollowers: 1, CommonHashtags: 4,
		EntourageRatio: 0.5, HashtagRatio: 0.25,
		AB:             interact.Counts{Favorites: 1, Retweets: 1, Comments: 1},
		BA:             interact.Counts{Favorites: 2},
		TotalFavorites: 3, TotalRetweets: 1, TotalComments: 1, TotalMentions: 2,
	}
}

func TestLinearPolicy(t *testing.T) {
	got := LinearPolicy{W: DefaultWeights()}.Apply(sample())
	// 3*1 + 2*1 + 1*3 + 1*2 + 0.5 + 0.25
	assert.InDelta(t, 10.75, got, 1e-9)

	zero := LinearPolicy{}.Apply(sample())
	assert.Zero(t, zero)
}

func TestEngagementPolicy(t *testing.T) {
	// interaction (A toward B) = 3+2+1 = 6; similarity = (2+1)*2 + 4 = 10
	assert.InDelta(t, 22, DefaultEngagement().Apply(sample()), 1e-9)
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("", DefaultWeights())
	require.NoError(t, err)
	assert.Equal(t, "linear", p.Name())

	p, err = PolicyByName("Engagement", Weights{})
	require.NoError(t, err)
	assert.Equal(t, DefaultEngagement(), p)

	p, err = PolicyByName("engagement", Weights{Comment: 10, Retweet: 0, Favorite: 0})
	require.NoError(t, err)
	assert.InDelta(t, 10*2+10, p.Apply(sample()), 1e-9)

	_, err = PolicyByName("magic", DefaultWeights())
	assert.Error(t, err)
}
