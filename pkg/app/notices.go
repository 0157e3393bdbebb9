package app

import "github.com/google/uuid"

// NoticeKind classifies a notice.
type NoticeKind string

const (
	NoticeDeleted    NoticeKind = "deleted"
	NoticeChanged    NoticeKind = "changed"
	NoticeEmpty      NoticeKind = "empty"
	NoticeNoBackup   NoticeKind = "no-backup"
	NoticeSaveFailed NoticeKind = "save-failed"
	NoticeOpenFailed NoticeKind = "open-failed"
)

// Notice is a dismissible message about one file. File is empty for notices
// about no particular open file.
type Notice struct {
	ID      string
	File    string
	Kind    NoticeKind
	Message string
}

// Notices returns the notices for a file, oldest first. An empty name
// returns the notices about no particular file.
func (s *Service) Notices(name string) []Notice {
	var out []Notice
	for _, n := range s.notices {
		if n.File == name {
			out = append(out, n)
		}
	}
	return out
}

// AllNotices returns every pending notice.
func (s *Service) AllNotices() []Notice {
	return append([]Notice(nil), s.notices...)
}

// Dismiss removes the notice with the given id.
func (s *Service) Dismiss(id string) bool {
	for i, n := range s.notices {
		if n.ID == id {
			s.notices = append(s.notices[:i], s.notices[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Service) notify(name string, kind NoticeKind, msg string) Notice {
	n := Notice{ID: uuid.NewString(), File: name, Kind: kind, Message: msg}
	s.notices = append(s.notices, n)
	s.log.Info(s.ctx, "notice", "file", name, "kind", string(kind), "message", msg)
	return n
}

func (s *Service) hasNotice(name string, kind NoticeKind) bool {
	for _, n := range s.notices {
		if n.File == name && n.Kind == kind {
			return true
		}
	}
	return false
}

func (s *Service) dismissKind(name string, kind NoticeKind) {
	out := s.notices[:0]
	for _, n := range s.notices {
		if n.File != name || n.Kind != kind {
			out = append(out, n)
		}
	}
	s.notices = out
}

func (s *Service) dismissFile(name string) {
	out := s.notices[:0]
	for _, n := range s.notices {
		if n.File != name {
			out = append(out, n)
		}
	}
	s.notices = out
}

func (s *Service) renameNotices(old, name string) {
	for i := range s.notices {
		if s.notices[i].File == old {
			s.notices[i].File = name
		}
	}
}
