package models

// FollowEdge links a follower to a followee. Rows are never deleted on
// unfollow; IsActive flips instead, so re-follow is an update and history
// survives toggling.
type FollowEdge struct {
	BaseModel
	FollowerID string `gorm:"not null;uniqueIndex:idx_follow_edges_pair" json:"follower_id"`
	FolloweeID string `gorm:"not null;uniqueIndex:idx_follow_edges_pair;index" json:"followee_id"`
	// No default tag: fresh edges are inserted inactive, and a default would
	// make gorm omit the zero value on insert.
	IsActive bool `gorm:"not null" json:"is_active"`
}

// Like target types.
const (
	LikeTargetPortfolio = "portfolio"
	LikeTargetAsset     = "asset"
	LikeTargetBlogPost  = "blog_post"
)

// Like follows the same flip-flag scheme as FollowEdge.
type Like struct {
	BaseModel
	UserID     string `gorm:"not null;uniqueIndex:idx_likes_triple" json:"user_id"`
	TargetType string `gorm:"type:varchar(20);not null;uniqueIndex:idx_likes_triple" json:"target_type"`
	TargetID   string `gorm:"not null;uniqueIndex:idx_likes_triple;index" json:"target_id"`
	IsActive   bool   `gorm:"not null" json:"is_active"`
}

func ValidLikeTarget(t string) bool {
	return t == LikeTargetPortfolio || t == LikeTargetAsset || t == LikeTargetBlogPost
}
