package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the bindings of the normal mode.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextFile key.Binding
	PrevFile key.Binding
	Search   key.Binding
	Clear    key.Binding
	Sort     key.Binding
	Reverse  key.Binding
	Edit     key.Binding
	Source   key.Binding
	Add      key.Binding
	Delete   key.Binding
	Undo     key.Binding
	Redo     key.Binding
	KeyGen   key.Binding
	Open     key.Binding
	New      key.Binding
	Strings  key.Binding
	Save     key.Binding
	Reload   key.Binding
	Dismiss  key.Binding
	Close    key.Binding
	Quit     key.Binding
	Help     key.Binding
}

// DefaultKeyMap returns the built-in bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		NextFile: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next file")),
		PrevFile: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous file")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Clear:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
		Sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort field")),
		Reverse:  key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "reverse sort")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit field")),
		Source:   key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "edit source")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add entry")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete entry")),
		Undo:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Redo:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "redo")),
		KeyGen:   key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "generate key")),
		Open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open file")),
		New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new file")),
		Strings:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import strings")),
		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Reload:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "reload from disk")),
		Dismiss:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss notice")),
		Close:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "close file")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Edit, k.Add, k.Delete, k.Undo, k.Save, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextFile, k.PrevFile, k.Search, k.Clear},
		{k.Sort, k.Reverse, k.Edit, k.Source, k.Add, k.Delete},
		{k.Undo, k.Redo, k.KeyGen, k.Reload, k.Dismiss},
		{k.Open, k.New, k.Strings, k.Save, k.Close, k.Quit},
	}
}
