package history

// Entry represents one recorded download in a room.
type Entry struct {
	ID        int64  `json:"id"`
	RoomID    string `json:"roomId"`
	FileID    string `json:"fileId"`
	Title     string `json:"title"`
	TrackID   int    `json:"trackId"`
	Provider  string `json:"provider"`
	CreatedAt string `json:"createdAt"`
}

// RecordInput contains fields for recording a download.
type RecordInput struct {
	RoomID   string
	FileID   string
	Title    string
	TrackID  int
	Provider string
}

// ListOptions contains options for listing a room's downloads.
type ListOptions struct {
	Page     int
	PageSize int
}

// ListResponse is a page of history entries.
type ListResponse struct {
	Items      []*Entry `json:"items"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalCount int64    `json:"totalCount"`
}
