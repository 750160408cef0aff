package database

import (
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
)

// NoticeCollector buffers the notices and warnings a server sends, keyed by
// the connection that received them. Handle is installed as the OnNotice
// callback of every pooled connection.
type NoticeCollector struct {
	mu      sync.Mutex
	notices map[*pgconn.PgConn][]*pgconn.Notice
}

// NewNoticeCollector creates an empty collector
func NewNoticeCollector() *NoticeCollector {
	return &NoticeCollector{
		notices: make(map[*pgconn.PgConn][]*pgconn.Notice),
	}
}

// Handle records a notice received on conn
func (c *NoticeCollector) Handle(conn *pgconn.PgConn, notice *pgconn.Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices[conn] = append(c.notices[conn], notice)
}

// Take returns and forgets the notices received on conn
func (c *NoticeCollector) Take(conn *pgconn.PgConn) []*pgconn.Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	notices := c.notices[conn]
	delete(c.notices, conn)
	return notices
}

// Pending returns the number of connections with unread notices
func (c *NoticeCollector) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.notices)
}
