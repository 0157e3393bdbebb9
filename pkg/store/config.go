package store

import (
	"fmt"
	"os"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/bib/pkg/bibtex"
	"tableflip.dev/bib/pkg/collection"
	"tableflip.dev/bib/pkg/entry"
)

// Config holds the editor preferences. It is loaded once at startup and
// passed to the store, the files it opens and their undo buffers.
type Config struct {
	DefaultEntryType string        `json:"default-entry-type"`
	CreateBackup     bool          `json:"create-backup"`
	AlignFields      bool          `json:"align-fields"`
	FieldIndent      string        `json:"field-indent"`
	UndoDelay        time.Duration `json:"undo-delay"`
	NewFileName      string        `json:"new-file-name"`
	NumRecent        int           `json:"num-recent"`
	RememberStrings  bool          `json:"remember-strings"`
	CommonStrings    bool          `json:"common-strings"`
	SortFields       []string      `json:"sort-fields"`
	SessionPath      string        `json:"session-path"`
	WatchDelay       time.Duration `json:"watch-delay"`
}

// DefaultConfig is the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		DefaultEntryType: string(collection.TypeArticle),
		CreateBackup:     true,
		AlignFields:      true,
		FieldIndent:      "\t",
		UndoDelay:        time.Second,
		NewFileName:      "new.bib",
		NumRecent:        10,
		RememberStrings:  true,
		CommonStrings:    true,
		SortFields:       append([]string(nil), entry.DefaultSortFields...),
		SessionPath:      "~/.local/share/bib",
		WatchDelay:       200 * time.Millisecond,
	}
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("default-entry-type", d.DefaultEntryType)
	v.SetDefault("create-backup", d.CreateBackup)
	v.SetDefault("align-fields", d.AlignFields)
	v.SetDefault("field-indent", d.FieldIndent)
	v.SetDefault("undo-delay", d.UndoDelay)
	v.SetDefault("new-file-name", d.NewFileName)
	v.SetDefault("num-recent", d.NumRecent)
	v.SetDefault("remember-strings", d.RememberStrings)
	v.SetDefault("common-strings", d.CommonStrings)
	v.SetDefault("sort-fields", d.SortFields)
	v.SetDefault("session-path", d.SessionPath)
	v.SetDefault("watch-delay", d.WatchDelay)
}

// LoadConfig reads .bib.yaml from $BIB_CONFIG_PATH, the home directory or
// the working directory, with BIB_* environment overrides, into the global
// viper instance.
func LoadConfig() (Config, error) {
	v := viper.GetViper()
	SetDefaults(v)
	v.SetConfigName(".bib") // .yaml is implicit
	v.SetEnvPrefix("BIB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("BIB_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("store: read config: %w", err)
		}
	}
	return ReadConfig(v)
}

// ReadConfig builds a Config from the values already present in v.
func ReadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		DefaultEntryType: strings.ToLower(strings.TrimSpace(v.GetString("default-entry-type"))),
		CreateBackup:     v.GetBool("create-backup"),
		AlignFields:      v.GetBool("align-fields"),
		FieldIndent:      v.GetString("field-indent"),
		UndoDelay:        v.GetDuration("undo-delay"),
		NewFileName:      v.GetString("new-file-name"),
		NumRecent:        v.GetInt("num-recent"),
		RememberStrings:  v.GetBool("remember-strings"),
		CommonStrings:    v.GetBool("common-strings"),
		SortFields:       v.GetStringSlice("sort-fields"),
		SessionPath:      v.GetString("session-path"),
		WatchDelay:       v.GetDuration("watch-delay"),
	}
	path, err := homedir.Expand(cfg.SessionPath)
	if err != nil {
		return Config{}, fmt.Errorf("store: expand session path: %w", err)
	}
	cfg.SessionPath = path
	if cfg.NumRecent < 0 {
		cfg.NumRecent = 0
	}
	if !strings.HasSuffix(cfg.NewFileName, ".bib") {
		cfg.NewFileName += ".bib"
	}
	return cfg, nil
}

// Writer returns the BibTeX writer configured by the alignment and
// indentation settings.
func (c Config) Writer() *bibtex.Writer {
	return &bibtex.Writer{
		Indent: c.FieldIndent,
		Align:  c.AlignFields,
	}
}

// FileOptions returns the options every opened file is created with.
func (c Config) FileOptions() collection.Options {
	return collection.Options{
		DefaultType: c.DefaultEntryType,
		Writer:      c.Writer(),
		SortFields:  c.SortFields,
	}
}
