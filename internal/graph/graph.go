// Package graph resolves a stored user's friends, followers and entourage.
package graph

import (
	"context"
	"fmt"

	"twitscan/internal/model"
	"twitscan/internal/util"
)

// Store is the part of the entity store the resolver reads.
type Store interface {
	UserExists(ctx context.Context, id int64) (bool, error)
	EntourageOf(ctx context.Context, userID int64) ([]model.Entourage, error)
}

// Circle is everything the resolver knows about one user's connections.
type Circle struct {
	Friends   util.Set[int64]
	Followers util.Set[int64]
	Entourage util.Set[int64]
}

type Resolver struct {
	store Store
}

func NewResolver(s Store) *Resolver { return &Resolver{store: s} }

// Resolve reads the user's edges once and splits them by flag.
func (r *Resolver) Resolve(ctx context.Context, userID int64) (Circle, error) {
	ok, err := r.store.UserExists(ctx, userID)
	if err != nil {
		return Circle{}, fmt.Errorf("resolve %d: %w", userID, err)
	}
	if !ok {
		return Circle{}, model.UserNotFound(userID)
	}
	edges, err := r.store.EntourageOf(ctx, userID)
	if err != nil {
		return Circle{}, fmt.Errorf("entourage of %d: %w", userID, err)
	}
	c := Circle{Friends: util.NewSet[int64](), Followers: util.NewSet[int64](), Entourage: util.NewSet[int64]()}
	for _, e := range edges {
		if e.Friend {
			c.Friends.Add(e.FriendFollowerID)
		}
		if e.Follower {
			c.Followers.Add(e.FriendFollowerID)
		}
		c.Entourage.Add(e.FriendFollowerID)
	}
	return c, nil
}

func (r *Resolver) Friends(ctx context.Context, userID int64) (util.Set[int64], error) {
	c, err := r.Resolve(ctx, userID)
	return c.Friends, err
}

func (r *Resolver) Followers(ctx context.Context, userID int64) (util.Set[int64], error) {
	c, err := r.Resolve(ctx, userID)
	return c.Followers, err
}

// Entourage is the union of friends and followers.
func (r *Resolver) Entourage(ctx context.Context, userID int64) (util.Set[int64], error) {
	c, err := r.Resolve(ctx, userID)
	return c.Entourage, err
}

func (r *Resolver) CommonFriends(ctx context.Context, a, b int64) (util.Set[int64], error) {
	return r.common(ctx, a, b, func(c Circle) util.Set[int64] { return c.Friends })
}

func (r *Resolver) CommonFollowers(ctx context.Context, a, b int64) (util.Set[int64], error) {
	return r.common(ctx, a, b, func(c Circle) util.Set[int64] { return c.Followers })
}

func (r *Resolver) CommonEntourage(ctx context.Context, a, b int64) (util.Set[int64], error) {
	return r.common(ctx, a, b, func(c Circle) util.Set[int64] { return c.Entourage })
}

func (r *Resolver) common(ctx context.Context, a, b int64, pick func(Circle) util.Set[int64]) (util.Set[int64], error) {
	ca, err := r.Resolve(ctx, a)
	if err != nil {
		return nil, err
	}
	cb, err := r.Resolve(ctx, b)
	if err != nil {
		return nil, err
	}
	return util.Intersect(pick(ca), pick(cb)), nil
}
