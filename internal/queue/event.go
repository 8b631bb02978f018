// Package queue defines message payloads exchanged over the message broker.
package queue

// VideoAddedEvent is published when a video is successfully attached to a
// hall. It carries enough information for downstream consumers to log or
// notify without querying the primary database.
type VideoAddedEvent struct {
	VideoID   uint64 `json:"video_id"`
	HallID    uint64 `json:"hall_id"`
	OwnerID   uint64 `json:"owner_id"`
	YouTubeID string `json:"youtube_id"`
	Title     string `json:"title"`
	AddedAt   string `json:"added_at"`
}
