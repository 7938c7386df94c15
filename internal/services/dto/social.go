package dto

// ToggleResult is the stable response shape of the idempotent toggles.
// Repeating the same request yields the same final state; only the call
// that actually flipped the edge reports StateChanged.
type ToggleResult struct {
	IsActive      bool `json:"-"`
	StateChanged  bool `json:"stateChanged"`
	PreviousState bool `json:"previousState"`
}

type FollowToggleResponse struct {
	IsFollowing   bool `json:"isFollowing"`
	StateChanged  bool `json:"stateChanged"`
	PreviousState bool `json:"previousState"`
}

type LikeToggleResponse struct {
	IsLiked       bool `json:"isLiked"`
	StateChanged  bool `json:"stateChanged"`
	PreviousState bool `json:"previousState"`
}

type FollowCountResponse struct {
	Count int64 `json:"count"`
}
