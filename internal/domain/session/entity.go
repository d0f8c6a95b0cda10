package session

import "time"

// ActiveSession is the one session a user may hold at a time.
type ActiveSession struct {
	UserID     string    `gorm:"column:user_id;primaryKey;size:64" json:"userId"`
	SessionID  string    `gorm:"column:session_id;size:36;not null" json:"sessionId"`
	UserAgent  string    `gorm:"column:user_agent;size:512" json:"userAgent,omitempty"`
	IPAddress  string    `gorm:"column:ip_address;size:64" json:"ipAddress,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"createdAt"`
	LastSeenAt time.Time `gorm:"column:last_seen_at;index" json:"lastSeenAt"`
}

func (ActiveSession) TableName() string { return "active_sessions" }

// Meta describes the client claiming a session.
type Meta struct {
	UserAgent string
	IPAddress string
}
