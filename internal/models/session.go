package models

// SessionStatus represents the lifecycle of a board session.
type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusClosed SessionStatus = "closed"
)

// BoardSession is the client-facing summary of one board session.
type BoardSession struct {
	ID           string        `json:"id"`
	Status       SessionStatus `json:"status"`
	Epoch        int           `json:"epoch"`
	SurfaceKey   string        `json:"surfaceKey"`
	Config       BoardConfig   `json:"config"`
	HasDocument  bool          `json:"hasDocument"`
	HasImage     bool          `json:"hasImage"`
	HasFrame     bool          `json:"hasFrame"`
	ObjectCount  int           `json:"objectCount"`
	CreatedAt    int64         `json:"createdAt"`    // Unix ms
	LastAccessed int64         `json:"lastAccessed"` // Unix ms
}
