// services/snapshot.go
package services

import (
	"context"
	"time"

	"web3-dashboard/models"
)

// Snapshot is a point-in-time export of every table.
type Snapshot struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Wallets     []models.Wallet  `json:"wallets"`
	Posts       []models.Post    `json:"posts"`
	Comments    []models.Comment `json:"comments"`
}

// BuildSnapshot reads wallets, posts and comments.
func BuildSnapshot(ctx context.Context, wallets WalletStore, blog *BlogStore) (*Snapshot, error) {
	snap := &Snapshot{GeneratedAt: time.Now().UTC()}

	var err error
	if snap.Wallets, err = wallets.GetAll(ctx); err != nil {
		return nil, err
	}
	if snap.Posts, err = blog.ListPosts(ctx); err != nil {
		return nil, err
	}
	if snap.Comments, err = blog.ListAllComments(ctx); err != nil {
		return nil, err
	}
	return snap, nil
}
