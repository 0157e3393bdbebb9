// Package tui is the terminal editor: one tab per open file, a table of
// entries and a footer for input, questions and notices.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/bib/pkg/app"
	"tableflip.dev/bib/pkg/entry"
	"tableflip.dev/bib/pkg/store"
	"tableflip.dev/bib/pkg/tui/theme"
)

type mode int

const (
	modeNormal mode = iota
	modeInput
	modeQuestion
)

type inputAction int

const (
	inputNone inputAction = iota
	inputSearch
	inputField
	inputValue
	inputSource
	inputOpen
	inputStrings
	inputSaveName
)

// sortFields are cycled through by the sort key, in column order.
var sortFields = []string{entry.KeyField, "author", "title", "journal", "year"}

// messages
type openedMsg struct{ opened []app.Opened }
type eventMsg struct{ ev store.Event }

// Model is the editor state. All service calls happen in Update.
type Model struct {
	svc   *app.Service
	ctx   context.Context
	keys  KeyMap
	theme theme.Theme
	help  help.Model
	table table.Model
	input textinput.Model
	// editor holds the BibTeX source of one entry while it is edited.
	editor textarea.Model

	mode   mode
	action inputAction
	field  string
	rows   []*entry.Entry

	current string
	flow    *flow
	asking  question
	opening int
	pending []app.OpenRequest
	focus   string

	status string
	width  int
	height int
}

// New creates the editor over svc. Files in reqs are opened in the
// background once the program starts; focus names the file to show first.
func New(ctx context.Context, svc *app.Service, reqs []app.OpenRequest, focus string) Model {
	th := theme.Default()

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(th.Table),
	)

	ti := textinput.New()
	ti.CharLimit = 0
	ti.Prompt = ""
	ti.PromptStyle = th.Footer.Prompt

	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(80)
	ta.SetHeight(10)

	m := Model{
		svc:     svc,
		ctx:     ctx,
		keys:    DefaultKeyMap(),
		theme:   th,
		help:    help.New(),
		table:   t,
		input:   ti,
		editor:  ta,
		pending: reqs,
		focus:   focus,
	}
	if len(reqs) > 0 {
		m.opening = 1
	}
	if docs := svc.Documents(); len(docs) > 0 {
		m.current = docs[0].Name()
	}
	m.refresh()
	return m
}

func columns(width int) []table.Column {
	key, typ, year := 18, 14, 6
	rest := width - key - typ - year - 10
	if rest < 20 {
		rest = 20
	}
	author := rest * 2 / 5
	return []table.Column{
		{Title: "Key", Width: key},
		{Title: "Type", Width: typ},
		{Title: "Author", Width: author},
		{Title: "Title", Width: rest - author},
		{Title: "Year", Width: year},
	}
}

// Init starts the background open and the watcher subscription.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitEvent()}
	if len(m.pending) > 0 {
		cmds = append(cmds, m.open(m.pending))
	}
	return tea.Batch(cmds...)
}

// open hands reqs to the service and waits for its callback. Callers count
// the pending open in m.opening.
func (m *Model) open(reqs []app.OpenRequest) tea.Cmd {
	ch := make(chan []app.Opened, 1)
	m.svc.Open(m.ctx, reqs, func(opened []app.Opened) {
		ch <- opened
	})
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case opened := <-ch:
			return openedMsg{opened: opened}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) waitEvent() tea.Cmd {
	ch := m.svc.Events()
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case ev := <-ch:
			return eventMsg{ev: ev}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) doc() *app.Document {
	return m.svc.Document(m.current)
}

func (m *Model) selected() *entry.Entry {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return nil
	}
	return m.rows[i]
}

// refresh rebuilds the table from the current document, keeping the cursor
// on the same entry where possible.
func (m *Model) refresh() {
	if m.doc() == nil {
		if docs := m.svc.Documents(); len(docs) > 0 {
			m.current = docs[0].Name()
		} else {
			m.current = ""
		}
	}

	var keep *entry.Entry
	if e := m.selected(); e != nil {
		keep = e
	}
	m.rows = nil
	if d := m.doc(); d != nil {
		m.rows = d.Rows()
	}
	rows := make([]table.Row, 0, len(m.rows))
	cursor := 0
	for i, e := range m.rows {
		key, typ, author, title, year := e.Row()
		if key == "" {
			key = "<no key>"
		}
		rows = append(rows, table.Row{key, typ, author, title, year})
		if e == keep {
			cursor = i
		}
	}
	m.table.SetRows(rows)
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	m.table.SetCursor(cursor)
}

func (m *Model) selectRow(index int) {
	for i, e := range m.rows {
		if e.Index == index {
			m.table.SetCursor(i)
			return
		}
	}
}

func (m *Model) resize() {
	m.help.Width = m.width
	m.table.SetColumns(columns(m.width))
	h := m.height - 6
	if h < 3 {
		h = 3
	}
	m.table.SetHeight(h)
	m.editor.SetWidth(m.width)
	m.editor.SetHeight(h)
}

// Update handles messages and keybindings.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case openedMsg:
		return m.finishOpen(msg.opened), nil
	case eventMsg:
		m.svc.HandleEvent(msg.ev)
		m.refresh()
		return m, m.waitEvent()
	case tea.KeyMsg:
		switch m.mode {
		case modeInput:
			return m.updateInput(msg)
		case modeQuestion:
			return m.updateQuestion(msg)
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m Model) finishOpen(opened []app.Opened) Model {
	m.opening--
	results := m.svc.Finish(opened)
	count := 0
	for _, r := range results {
		if r.OK() {
			count++
			m.current = r.Name
		}
	}
	if m.focus != "" && m.svc.Document(m.focus) != nil {
		m.current = m.focus
		m.focus = ""
	}
	if len(m.svc.Documents()) == 0 {
		m.current = m.svc.NewFile().Name()
	}
	if count > 0 {
		m.status = fmt.Sprintf("Opened %d file(s)", count)
	}
	m.refresh()
	return m
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.startFlow(newFlow(flowQuit, m.names()...))
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.NextFile):
		m.cycle(1)
	case key.Matches(msg, m.keys.PrevFile):
		m.cycle(-1)
	case key.Matches(msg, m.keys.Search):
		value := ""
		if d := m.doc(); d != nil {
			value = d.View.Search
		}
		return m, m.ask(inputSearch, "Search: ", value)
	case key.Matches(msg, m.keys.Clear):
		if d := m.doc(); d != nil && d.View.Search != "" {
			d.View.Search = ""
			m.refresh()
		}
	case key.Matches(msg, m.keys.Sort):
		if d := m.doc(); d != nil {
			d.View.ToggleSort(nextSortField(d.View.SortKey))
			m.status = "Sorted by " + d.View.SortKey
			m.refresh()
		}
	case key.Matches(msg, m.keys.Reverse):
		if d := m.doc(); d != nil {
			d.View.ToggleSort(d.View.SortKey)
			m.refresh()
		}
	case key.Matches(msg, m.keys.Edit):
		if m.selected() != nil {
			return m, m.ask(inputField, "Field: ", "")
		}
	case key.Matches(msg, m.keys.Source):
		if e := m.selected(); e != nil {
			return m, m.editSource(e)
		}
	case key.Matches(msg, m.keys.Add):
		m.add()
	case key.Matches(msg, m.keys.Delete):
		if e := m.selected(); e != nil {
			m.report(m.svc.Delete(m.current, e.Index), "Deleted "+e.String())
			m.refresh()
		}
	case key.Matches(msg, m.keys.Undo):
		ok, err := m.svc.Undo(m.current)
		m.report(err, outcome(ok, "Undone", "Nothing to undo"))
		m.refresh()
	case key.Matches(msg, m.keys.Redo):
		ok, err := m.svc.Redo(m.current)
		m.report(err, outcome(ok, "Redone", "Nothing to redo"))
		m.refresh()
	case key.Matches(msg, m.keys.KeyGen):
		if e := m.selected(); e != nil {
			k, err := m.svc.GenerateKey(m.current, e.Index)
			m.report(err, "Key "+k)
			m.refresh()
		}
	case key.Matches(msg, m.keys.Open):
		return m, m.ask(inputOpen, "Open: ", "")
	case key.Matches(msg, m.keys.New):
		m.current = m.svc.NewFile().Name()
		m.status = "New file"
		m.refresh()
	case key.Matches(msg, m.keys.Strings):
		return m, m.ask(inputStrings, "Import strings: ", "")
	case key.Matches(msg, m.keys.Save):
		if m.doc() != nil {
			return m.startFlow(newFlow(flowSave, m.current))
		}
	case key.Matches(msg, m.keys.Reload):
		if m.doc() != nil {
			r := m.svc.Reload(m.current)
			m.report(r.Err, "Reloaded")
			m.refresh()
		}
	case key.Matches(msg, m.keys.Dismiss):
		if n, ok := m.notice(); ok {
			m.svc.Dismiss(n.ID)
		}
	case key.Matches(msg, m.keys.Close):
		if m.doc() != nil {
			return m.startFlow(newFlow(flowClose, m.current))
		}
	default:
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

func outcome(ok bool, done, nothing string) string {
	if ok {
		return done
	}
	return nothing
}

func nextSortField(current string) string {
	for i, f := range sortFields {
		if f == current {
			return sortFields[(i+1)%len(sortFields)]
		}
	}
	return sortFields[0]
}

func (m *Model) names() []string {
	docs := m.svc.Documents()
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name())
	}
	return names
}

func (m *Model) cycle(step int) {
	names := m.names()
	if len(names) == 0 {
		return
	}
	i := 0
	for j, n := range names {
		if n == m.current {
			i = j
		}
	}
	i = (i + step + len(names)) % len(names)
	m.current = names[i]
	if err := m.svc.SetOpenTab(m.current); err != nil {
		m.status = "ERR: " + err.Error()
	}
	m.refresh()
}

func (m *Model) add() {
	d := m.doc()
	if d == nil {
		return
	}
	indices, err := m.svc.AddEntries(m.current)
	if err != nil {
		m.report(err, "")
		return
	}
	d.View.Search = ""
	m.refresh()
	m.selectRow(indices[0])
	m.status = "Added entry"
}

func (m *Model) report(err error, ok string) {
	if err != nil {
		m.status = "ERR: " + err.Error()
		return
	}
	m.status = ok
}

// ask switches to input mode for action.
func (m *Model) ask(action inputAction, prompt, value string) tea.Cmd {
	m.mode = modeInput
	m.action = action
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.ShowSuggestions = false
	if action == inputField {
		if e := m.selected(); e != nil {
			m.input.SetSuggestions(append(e.Fields(), entry.KeyField))
			m.input.ShowSuggestions = true
		}
	}
	return m.input.Focus()
}

// editSource opens the multi-line editor on the source of e.
func (m *Model) editSource(e *entry.Entry) tea.Cmd {
	m.mode = modeInput
	m.action = inputSource
	m.editor.SetValue(strings.TrimRight(e.Source(), "\n"))
	return m.editor.Focus()
}

func (m *Model) endInput() {
	m.mode = modeNormal
	m.action = inputNone
	m.input.Reset()
	m.input.Blur()
	m.editor.Reset()
	m.editor.Blur()
}

// updateEditor lets enter insert newlines; the save key applies the source.
func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m.endInput()
		m.status = "Cancelled"
		return m, nil
	case key.Matches(msg, m.keys.Save):
		return m.submit(m.editor.Value())
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.action == inputSource {
		return m.updateEditor(msg)
	}
	switch msg.Type {
	case tea.KeyEsc:
		action := m.action
		m.endInput()
		m.status = "Cancelled"
		if action == inputSaveName {
			m.flow = nil
		}
		return m, nil
	case tea.KeyEnter:
		return m.submit(strings.TrimSpace(m.input.Value()))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.action == inputSearch {
		if d := m.doc(); d != nil {
			d.View.Search = m.input.Value()
			m.refresh()
		}
	}
	return m, cmd
}

func (m Model) submit(value string) (tea.Model, tea.Cmd) {
	action := m.action
	m.endInput()

	switch action {
	case inputSearch:
		if d := m.doc(); d != nil {
			d.View.Search = value
		}
	case inputField:
		e := m.selected()
		if e == nil || value == "" {
			return m, nil
		}
		m.field = value
		raw, _ := e.Raw(value)
		return m, m.ask(inputValue, value+" = ", raw)
	case inputValue:
		if e := m.selected(); e != nil {
			m.report(m.svc.EditField(m.current, e.Index, m.field, value), "Set "+m.field)
		}
	case inputSource:
		if e := m.selected(); e != nil {
			m.report(m.svc.ReplaceSource(m.current, e.Index, value), "Replaced "+e.String())
		}
	case inputOpen:
		if value == "" {
			return m, nil
		}
		path, err := filepath.Abs(value)
		if err != nil {
			m.report(err, "")
			return m, nil
		}
		m.status = "Opening " + path
		m.opening++
		return m, m.open(app.Requests(path))
	case inputStrings:
		if value == "" {
			return m, nil
		}
		path, err := filepath.Abs(value)
		if err != nil {
			m.report(err, "")
			return m, nil
		}
		m.status = "Strings " + m.svc.ImportStrings(path).String()
	case inputSaveName:
		if m.flow == nil {
			return m, nil
		}
		if value == "" {
			m.flow = nil
			m.status = "Cancelled"
			return m, nil
		}
		path, err := filepath.Abs(value)
		if err != nil {
			m.flow = nil
			m.report(err, "")
			return m, nil
		}
		r := m.flow.reply(m.flow.current())
		r.name, r.named = path, true
		return m.advance()
	}
	m.refresh()
	return m, nil
}

func (m Model) startFlow(f *flow) (tea.Model, tea.Cmd) {
	m.flow = f
	return m.advance()
}

// advance asks the next open question of the flow or, when the current
// document is fully answered, handles it and moves on.
func (m Model) advance() (tea.Model, tea.Cmd) {
	f := m.flow
	for f != nil {
		name := f.current()
		if name == "" {
			return m.finishFlow()
		}
		d := m.svc.Document(name)
		q := f.next(d)
		switch q {
		case askSaveChanges, askConfirmSave:
			m.current = name
			m.refresh()
			m.mode = modeQuestion
			m.asking = q
			return m, nil
		case askSaveName:
			m.current = name
			m.refresh()
			return m, m.ask(inputSaveName, f.prompt(q, d), "")
		}
		if d != nil && !m.handle(f, d) {
			m.flow = nil
			m.refresh()
			return m, nil
		}
		f.pos++
	}
	return m, nil
}

// handle saves and closes one fully answered document. It reports whether
// the flow may continue.
func (m *Model) handle(f *flow, d *app.Document) bool {
	r := f.reply(d.Name())
	if r.save == app.AnswerSave && (d.File.Unsaved || f.kind == flowSave) {
		ok, err := m.svc.Save(d.Name(), prompter{f: f})
		if err != nil {
			m.report(err, "")
			return false
		}
		if !ok {
			m.status = "Not saved"
			return false
		}
		m.current = d.Name()
		m.status = "Saved " + d.File.ShortName
	}
	if f.kind == flowClose {
		if _, err := m.svc.Close([]string{d.Name()}, nil, false); err != nil {
			m.report(err, "")
			return false
		}
		m.status = "Closed " + d.File.ShortName
	}
	return true
}

func (m Model) finishFlow() (tea.Model, tea.Cmd) {
	f := m.flow
	m.flow = nil
	if f.kind == flowQuit {
		if _, err := m.svc.Close(m.names(), nil, true); err != nil {
			m.report(err, "")
			return m, nil
		}
		return m, tea.Quit
	}
	if len(m.svc.Documents()) == 0 {
		m.current = m.svc.NewFile().Name()
	}
	m.refresh()
	return m, nil
}

func (m Model) updateQuestion(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.flow
	if f == nil {
		m.mode = modeNormal
		return m, nil
	}
	r := f.reply(f.current())
	answer := strings.ToLower(msg.String())
	switch m.asking {
	case askSaveChanges:
		switch answer {
		case "y":
			r.save, r.asked = app.AnswerSave, true
		case "n":
			r.save, r.asked = app.AnswerDiscard, true
		case "c", "esc":
			return m.cancelFlow()
		default:
			return m, nil
		}
	case askConfirmSave:
		switch answer {
		case "y":
			r.confirm, r.confirmed = true, true
		case "n", "c", "esc":
			return m.cancelFlow()
		default:
			return m, nil
		}
	}
	m.mode = modeNormal
	m.asking = askNothing
	return m.advance()
}

func (m Model) cancelFlow() (tea.Model, tea.Cmd) {
	m.flow = nil
	m.mode = modeNormal
	m.asking = askNothing
	m.status = "Cancelled"
	return m, nil
}

// notice returns the first notice shown for the current file, falling back
// to notices about no particular file.
func (m *Model) notice() (app.Notice, bool) {
	if ns := m.svc.Notices(m.current); len(ns) > 0 {
		return ns[0], true
	}
	if ns := m.svc.Notices(""); len(ns) > 0 {
		return ns[0], true
	}
	return app.Notice{}, false
}

// View renders the tabs, the table and the footer.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.tabsView())
	b.WriteString("\n")
	if m.mode == modeInput && m.action == inputSource {
		b.WriteString(m.editor.View())
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")
	if line := m.noticeView(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) tabsView() string {
	var tabs []string
	for _, d := range m.svc.Documents() {
		label := d.File.ShortName
		if d.File.Unsaved {
			label += m.theme.Tabs.Unsaved.Render("*")
		}
		style := m.theme.Tabs.Inactive
		if d.Name() == m.current {
			style = m.theme.Tabs.Active
		}
		tabs = append(tabs, style.Render(label))
	}
	if m.opening > 0 {
		tabs = append(tabs, m.theme.Tabs.Inactive.Render("opening…"))
	}
	if d := m.doc(); d != nil {
		sort := d.View.SortKey
		if d.View.Descending {
			sort += " ↓"
		}
		tabs = append(tabs, m.theme.Footer.Status.Render(fmt.Sprintf("%d/%d · %s", len(m.rows), d.File.Len(), sort)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) noticeView() string {
	n, ok := m.notice()
	if !ok {
		return ""
	}
	style := m.theme.Notice.Info
	hint := "x dismiss"
	switch n.Kind {
	case app.NoticeChanged:
		hint = "L reload · x dismiss"
		style = m.theme.Notice.Warning
	case app.NoticeDeleted, app.NoticeSaveFailed, app.NoticeOpenFailed:
		style = m.theme.Notice.Warning
	}
	return style.Render(n.Message) + " " + m.theme.Notice.Hint.Render(hint)
}

func (m Model) footerView() string {
	switch m.mode {
	case modeInput:
		if m.action == inputSource {
			return m.theme.Footer.Prompt.Render("Source") + " " + m.theme.Notice.Hint.Render("ctrl+s apply · esc cancel")
		}
		return m.input.View()
	case modeQuestion:
		if m.flow != nil {
			d := m.svc.Document(m.flow.current())
			if d != nil {
				return m.theme.Footer.Question.Render(m.flow.prompt(m.asking, d))
			}
		}
	}
	var parts []string
	if m.status != "" {
		parts = append(parts, m.theme.Footer.Status.Render(m.status))
	}
	parts = append(parts, m.help.View(m.keys))
	return strings.Join(parts, " │ ")
}
