package catalog

import (
	"time"
)

// Song rows are owned by an external ingestion path; this service only
// reads them and annotates them with like state.
type Song struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Artist      string     `json:"artist"`
	Album       *string    `json:"album,omitempty"`
	Genre       *string    `json:"genre,omitempty"`
	FilePath    string     `json:"filePath"`
	DurationMs  int        `json:"durationMs"`
	AlbumArtURL *string    `json:"albumArtUrl,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

type SongWithLikeInfo struct {
	Song
	IsLiked   bool `json:"isLiked"`
	LikeCount int  `json:"likeCount"`
}

type Playlist struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	CreatorID   string     `json:"creatorId"`
	IsPublic    bool       `json:"isPublic"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

type CreatorInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlaylistSummary is a playlist annotated for a specific requester.
type PlaylistSummary struct {
	Playlist
	IsCreator   bool         `json:"isCreator"`
	IsInLibrary bool         `json:"isInLibrary"`
	Creator     *CreatorInfo `json:"creator,omitempty"`
}

type PlaylistWithSongs struct {
	PlaylistSummary
	Songs []Song `json:"songs"`
}

const (
	likedSongsPlaylistName = "Liked Songs"
	likedSongsDescription  = "Your liked songs"
)
