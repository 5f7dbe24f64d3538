package models

import "time"

// Video is the platform-agnostic view of a managed video asset.
type Video struct {
	PublishedAt   time.Time `json:"published_at"`
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ChannelTitle  string    `json:"channel_title,omitempty"`
	PrivacyStatus string    `json:"privacy_status,omitempty"`
	ViewCount     uint64    `json:"view_count"`
	LikeCount     uint64    `json:"like_count"`
	CommentCount  uint64    `json:"comment_count"`
}

// Comment is a top-level comment or a reply on a video.
type Comment struct {
	PublishedAt time.Time `json:"published_at"`
	ID          string    `json:"id"`
	ParentID    string    `json:"parent_id,omitempty"`
	VideoID     string    `json:"video_id,omitempty"`
	Author      string    `json:"author"`
	Text        string    `json:"text"`
	Replies     []Comment `json:"replies,omitempty"`
}
