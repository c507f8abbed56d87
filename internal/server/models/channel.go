package models

import "time"

// ChannelProfile is the public aggregation view of an account's channel.
type ChannelProfile struct {
	Username        string `json:"username"`
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	AvatarURL       string `json:"avatar"`
	CoverImageURL   string `json:"coverImage"`
	SubscriberCount int64  `json:"subscriberCount"`
	SubscribedTo    int64  `json:"channelSubscribedToCount"`
	IsSubscribed    bool   `json:"isSubscribed"`
}

// WatchEvent is one entry of an account's watch history.
type WatchEvent struct {
	VideoID   string    `json:"videoId"`
	Title     string    `json:"title"`
	WatchedAt time.Time `json:"watchedAt"`
}
