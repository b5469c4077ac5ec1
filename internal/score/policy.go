package score

import (
	"fmt"
	"strings"
)

// Policy folds a Vector into one number for ranking. Higher is closer.
type Policy interface {
	Name() string
	Apply(v Vector) float64
}

// Weights multiply the summed two-way totals and the overlap ratios.
type Weights struct {
	Comment   float64 `yaml:"comment" json:"comment"`
	Retweet   float64 `yaml:"retweet" json:"retweet"`
	Favorite  float64 `yaml:"favorite" json:"favorite"`
	Mention   float64 `yaml:"mention" json:"mention"`
	Entourage float64 `yaml:"entourage" json:"entourage"`
	Hashtag   float64 `yaml:"hashtag" json:"hashtag"`
}

func DefaultWeights() Weights {
	return Weights{Comment: 3, Retweet: 2, Favorite: 1, Mention: 1, Entourage: 1, Hashtag: 1}
}

// LinearPolicy is a weighted sum over both directions.
type LinearPolicy struct{ W Weights }

func (LinearPolicy) Name() string { return "linear" }

func (p LinearPolicy) Apply(v Vector) float64 {
	w := p.W
	return w.Comment*float64(v.TotalComments) +
		w.Retweet*float64(v.TotalRetweets) +
		w.Favorite*float64(v.TotalFavorites) +
		w.Mention*float64(v.TotalMentions) +
		w.Entourage*v.EntourageRatio +
		w.Hashtag*v.HashtagRatio
}

// EngagementPolicy measures how engaged A is with B:
//
//	interaction = comments*Comment + retweets*Retweet + favorites*Favorite  (A toward B)
//	similarity  = (common friends + common followers)*Common + common hashtags*Hashtag
//	engagement  = interaction*Interaction + similarity
//
// The zero value is unusable; start from DefaultEngagement.
type EngagementPolicy struct {
	Comment, Retweet, Favorite float64
	Common, Hashtag            float64
	Interaction                float64
}

func DefaultEngagement() EngagementPolicy {
	return EngagementPolicy{Comment: 3, Retweet: 2, Favorite: 1, Common: 2, Hashtag: 1, Interaction: 2}
}

func (EngagementPolicy) Name() string { return "engagement" }

func (p EngagementPolicy) Apply(v Vector) float64 {
	interaction := p.Comment*float64(v.AB.Comments) + p.Retweet*float64(v.AB.Retweets) + p.Favorite*float64(v.AB.Favorites)
	similarity := p.Common*float64(v.CommonFriends+v.CommonFollowers) + p.Hashtag*float64(v.CommonHashtags)
	return interaction*p.Interaction + similarity
}

// PolicyByName builds a policy from its config name. Weights apply to the
// linear policy; the engagement policy takes its interaction multipliers
// from the comment, retweet and favorite weights.
func PolicyByName(name string, w Weights) (Policy, error) {
	switch strings.ToLower(name) {
	case "", "linear":
		return LinearPolicy{W: w}, nil
	case "engagement":
		p := DefaultEngagement()
		if w.Comment != 0 || w.Retweet != 0 || w.Favorite != 0 {
			p.Comment, p.Retweet, p.Favorite = w.Comment, w.Retweet, w.Favorite
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown scoring policy %q", name)
}
