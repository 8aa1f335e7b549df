package shift

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/railpos/railpos/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNoActiveShift gates every order-mutating operation: while no shift is
// current there is no orders database to write to.
var ErrNoActiveShift = errors.New("no active shift")

const markerFile = "current-shift.json"

// Info is the persisted current-shift marker: which orders database file is
// live and the local calendar date (YYYY-MM-DD) the shift was started.
type Info struct {
	Path string `json:"path"`
	Date string `json:"date"`
}

// Session is an open handle to the current shift's orders database. It is
// handed out by the Manager so callers never touch a global connection.
type Session struct {
	conn *gorm.DB
	info Info
}

func (s *Session) DB() *gorm.DB { return s.conn }
func (s *Session) Info() Info   { return s.info }

// Manager owns the current-shift marker and the lifecycle of shift-scoped
// orders databases. One orders database file exists per calendar date of
// shift start; closed shifts keep their file on disk.
type Manager struct {
	dir string

	mu      sync.Mutex
	session *Session
}

// NewManager creates a manager rooted at dir (the shifts directory).
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

func (m *Manager) markerPath() string { return filepath.Join(m.dir, markerFile) }

// Start begins a shift for today's local date, opening (and creating if
// needed) the date-named orders database and persisting the marker.
//
// Calling Start while a shift is already current swaps the live handle: the
// previous handle is closed but its file is never deleted. A same-date
// restart therefore reopens the existing file with its orders intact.
func (m *Manager) Start() (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return Info{}, fmt.Errorf("create shifts dir: %w", err)
	}
	date := time.Now().Format("2006-01-02")
	path := filepath.Join(m.dir, fmt.Sprintf("orders-%s.sqlite", date))

	conn, err := openOrdersDB(path)
	if err != nil {
		return Info{}, err
	}

	// The marker gates everything: the new session only becomes live once the
	// marker is durably on disk.
	info := Info{Path: path, Date: date}
	if err := m.writeMarker(info); err != nil {
		closeConn(conn)
		return Info{}, err
	}
	if m.session != nil {
		closeConn(m.session.conn)
	}
	m.session = &Session{conn: conn, info: info}
	log.Printf("[Shift] Started shift %s (%s)", date, path)
	return info, nil
}

// Close ends the current shift: the live handle is closed and the marker is
// removed. The per-date database file stays on disk for later recovery.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		closeConn(m.session.conn)
		m.session = nil
	}
	if err := os.Remove(m.markerPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove shift marker: %w", err)
	}
	log.Println("[Shift] Closed current shift")
	return nil
}

// Current reads the marker. ok is false when no shift is current or the
// marker is unreadable.
func (m *Manager) Current() (info Info, ok bool) {
	raw, err := os.ReadFile(m.markerPath())
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[Shift] Failed reading marker: %v", err)
		}
		return Info{}, false
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		log.Printf("[Shift] Malformed marker: %v", err)
		return Info{}, false
	}
	return info, true
}

// Session returns the open session for the current shift, lazily reopening
// the marker's database after an app restart with a still-open shift.
// Returns ErrNoActiveShift when no marker exists.
func (m *Manager) Session() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return m.session, nil
	}
	info, ok := m.Current()
	if !ok {
		return nil, ErrNoActiveShift
	}
	conn, err := openOrdersDB(info.Path)
	if err != nil {
		return nil, err
	}
	m.session = &Session{conn: conn, info: info}
	return m.session, nil
}

func (m *Manager) writeMarker(info Info) error {
	raw, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.markerPath(), raw, 0o644); err != nil {
		return fmt.Errorf("write shift marker: %w", err)
	}
	return nil
}

func openOrdersDB(path string) (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open orders db %s: %w", path, err)
	}
	db.EnsureOrdersSchema(conn)
	return conn, nil
}

func closeConn(conn *gorm.DB) {
	sqlDB, err := conn.DB()
	if err != nil {
		log.Printf("[Shift] Error resolving db handle: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("[Shift] Error closing previous orders db: %v", err)
	}
}
