package domain

import "time"

type Feed struct {
	ID         int64
	Title      string
	CategoryID int64
}

type Category struct {
	ID    int64
	Title string
}

type Entry struct {
	ID          int64
	Title       string
	Content     string
	URL         string
	PublishedAt time.Time
	FeedTitle   string
}

const (
	EntryStatusUnread     = "unread"
	EntryOrderPublishedAt = "published_at"
	DirectionDesc         = "desc"
)

// EntryQuery mirrors the filters of the feed API's entries endpoint.
// Zero values are left out of the request.
type EntryQuery struct {
	Status     string
	Order      string
	Direction  string
	Limit      int
	After      time.Time
	FeedID     int64
	CategoryID int64
}
