package app

import (
	"strings"
)

// Answer is the reply to the question what to do with unsaved changes.
type Answer int

const (
	AnswerCancel Answer = iota
	AnswerSave
	AnswerDiscard
)

// Prompter asks the user the questions of the save and close flows.
type Prompter interface {
	// SaveChanges asks what to do with the unsaved changes of a file that
	// is about to be closed.
	SaveChanges(d *Document) Answer
	// ConfirmSave asks whether to save a file with entries lacking a key or
	// sharing one.
	ConfirmSave(d *Document, emptyKeys bool, duplicates []string) bool
	// SaveName asks for the name of a file that has none on disk yet. An
	// empty name cancels.
	SaveName(d *Document) string
}

// Save writes a document if it has unsaved changes. New files are named by
// the prompter. It reports whether the file is saved afterwards.
func (s *Service) Save(name string, p Prompter) (bool, error) {
	d, err := s.doc(name)
	if err != nil {
		return false, err
	}
	if !d.File.Unsaved {
		return true, nil
	}
	if d.File.Created {
		return s.SaveAs(name, "", p)
	}
	return s.SaveAs(name, name, p)
}

// SaveAll saves every document with unsaved changes and stops at the first
// one that could not be saved.
func (s *Service) SaveAll(p Prompter) (bool, error) {
	for _, d := range s.Documents() {
		if ok, err := s.Save(d.Name(), p); !ok || err != nil {
			return ok, err
		}
	}
	return true, nil
}

// SaveAs writes a document under newName, asking the prompter for a name
// when newName is empty. Files with empty or duplicate keys are only written
// after confirmation. Another open document of the same name is closed
// without saving. When writing fails the document is kept unsaved and a
// notice is added.
func (s *Service) SaveAs(name, newName string, p Prompter) (bool, error) {
	d, err := s.doc(name)
	if err != nil {
		return false, err
	}

	empty := d.File.HasEmptyKeys()
	duplicates := d.File.DuplicateKeys()
	if empty || len(duplicates) > 0 {
		if p == nil || !p.ConfirmSave(d, empty, duplicates) {
			return false, nil
		}
	}
	if newName == "" {
		if p == nil {
			return false, ErrCancelled
		}
		newName = strings.TrimSpace(p.SaveName(d))
		if newName == "" {
			return false, nil
		}
	}
	if !strings.HasSuffix(newName, ".bib") {
		newName += ".bib"
	}

	s.stopWatch(d)
	if newName != name {
		if _, ok := s.docs[newName]; ok {
			s.forget(newName)
		}
		if !d.File.Created {
			s.addRecent(d)
		}
		if err := s.Store.Rename(name, newName); err != nil {
			return false, err
		}
		delete(s.docs, name)
		s.docs[newName] = d
		s.renameNotices(name, newName)
	}

	if err := s.Store.Save(newName, d.View); err != nil {
		d.File.Created = true
		d.Changes.MarkUnsaved()
		s.notify(newName, NoticeSaveFailed, "The file could not be saved.")
		return false, err
	}
	d.Changes.MarkSaved()
	s.dismissKind(newName, NoticeSaveFailed)
	s.dismissKind(newName, NoticeDeleted)
	s.dismissKind(newName, NoticeChanged)
	s.startWatch(d)
	return true, nil
}

// Close closes documents one after the other. For every document with
// unsaved changes the prompter decides: saving a document that then fails
// to save, or cancelling, stops the flow and leaves the remaining documents
// open. A nil prompter discards all changes. Saved files are remembered as
// recent files unless closeApp is set, in which case the session is saved
// first. It reports whether every document was closed.
func (s *Service) Close(names []string, p Prompter, closeApp bool) (bool, error) {
	var docs []*Document
	for _, name := range names {
		d, err := s.doc(name)
		if err != nil {
			return false, err
		}
		docs = append(docs, d)
	}

	for _, d := range docs {
		if !d.File.Unsaved || p == nil {
			continue
		}
		switch p.SaveChanges(d) {
		case AnswerCancel:
			return false, nil
		case AnswerSave:
			if ok, err := s.Save(d.Name(), p); !ok || err != nil {
				return false, err
			}
		case AnswerDiscard:
		}
	}

	if closeApp {
		if err := s.SaveSession(); err != nil {
			s.log.Warn(s.ctx, "save session", "err", err)
		}
	}
	for _, d := range docs {
		if !d.File.Created && !closeApp {
			s.addRecent(d)
		}
		s.forget(d.Name())
	}
	return true, nil
}

// forget drops a document without any questions.
func (s *Service) forget(name string) {
	d, ok := s.docs[name]
	if !ok {
		return
	}
	s.stopWatch(d)
	if _, err := s.Store.Close(name); err != nil {
		s.log.Warn(s.ctx, "close file", "name", name, "err", err)
	}
	delete(s.docs, name)
	s.dismissFile(name)
}
