// internal/domain/models/notice.go
package models

import "time"

// NoticeBoard is the singleton document holding every notice.
// It lives in the site_content collection under the fixed id "notices".
// The whole notice list is one array field; Version guards array mutations
// against concurrent admin sessions.
type NoticeBoard struct {
	ID      string   `bson:"_id" json:"id"`
	Notices []Notice `bson:"notices_list" json:"notices_list"`
	Version int64    `bson:"version" json:"version"`
}

// Notice is a single notice-board entry embedded in NoticeBoard.
// The id is generated client side at add time and is the only identity used
// for edit, delete, and toggle operations.
type Notice struct {
	ID        string    `bson:"id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Content   string    `bson:"content" json:"content"`
	Date      string    `bson:"date" json:"date"` // display date, YYYY-MM-DD
	Important bool      `bson:"important" json:"important"`
	Active    bool      `bson:"active" json:"active"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// NoticeBoardID is the fixed document id of the notice board singleton.
const NoticeBoardID = "notices"

// NoticeDateLayout is the layout for Notice.Date values.
const NoticeDateLayout = "2006-01-02"

// NormalizeNoticeDate returns the date unchanged when it parses as
// YYYY-MM-DD, otherwise today's date in that layout. An empty date also
// defaults to today, matching the add-form behavior.
func NormalizeNoticeDate(date string, now time.Time) string {
	if date != "" {
		if _, err := time.Parse(NoticeDateLayout, date); err == nil {
			return date
		}
	}
	return now.UTC().Format(NoticeDateLayout)
}
