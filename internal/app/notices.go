package app

import "sync"

// Notice levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
)

// Notice is a banner shown to the user until dismissed.
type Notice struct {
	ID      string `json:"id"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

const noticeSuggestionsID = "suggestions-unavailable"

func noticeSuggestionsUnavailable() Notice {
	return Notice{
		ID:      noticeSuggestionsID,
		Level:   LevelInfo,
		Message: "Sugestões por IA indisponíveis: configure GEMINI_API_KEY ou GROQ_API_KEY.",
	}
}

// noticeBoard keeps at most one notice per id. A dismissed id is never
// shown again.
type noticeBoard struct {
	mu        sync.Mutex
	notices   []Notice
	dismissed map[string]bool
}

func (b *noticeBoard) add(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dismissed[n.ID] {
		return
	}
	for _, existing := range b.notices {
		if existing.ID == n.ID {
			return
		}
	}
	b.notices = append(b.notices, n)
}

func (b *noticeBoard) list() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Notice{}, b.notices...)
}

func (b *noticeBoard) dismiss(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dismissed == nil {
		b.dismissed = make(map[string]bool)
	}
	for i, n := range b.notices {
		if n.ID == id {
			b.notices = append(b.notices[:i], b.notices[i+1:]...)
			b.dismissed[id] = true
			return true
		}
	}
	return false
}

// Notices returns the active notices.
func (a *App) Notices() []Notice {
	return a.notices.list()
}

// DismissNotice hides a notice for the rest of the process lifetime.
func (a *App) DismissNotice(id string) bool {
	return a.notices.dismiss(id)
}
