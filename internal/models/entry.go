package models

import "strings"

// The three entry kinds share one reconciliation shape: a caller-chosen
// stable UUID and a blank test that decides whether a submitted row counts
// at all. Clearing an entry's content is the same as not submitting it.

func (w *WorkItem) EntryID() string      { return w.ID }
func (w *WorkItem) SetEntryID(id string) { w.ID = id }
func (w *WorkItem) Blank() bool          { return strings.TrimSpace(w.Content) == "" }

func (a *Appeal) EntryID() string      { return a.ID }
func (a *Appeal) SetEntryID(id string) { a.ID = id }
func (a *Appeal) Blank() bool          { return strings.TrimSpace(a.Content) == "" }

func (t *Trouble) EntryID() string      { return t.ID }
func (t *Trouble) SetEntryID(id string) { t.ID = id }
func (t *Trouble) Blank() bool          { return strings.TrimSpace(t.Content) == "" }
