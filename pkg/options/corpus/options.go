// Package corpus provides document corpus source options.
package corpus

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/iwac-chat/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// 语料来源类型。
const (
	SourceFile     = "file"
	SourceDatabase = "database"
)

// Options 语料加载配置。
type Options struct {
	// Source 语料来源（file, database）。
	Source string `json:"source" mapstructure:"source"`

	// Path JSON 语料文件路径。
	Path string `json:"path" mapstructure:"path"`

	// Database 数据库语料配置。
	Database *DatabaseOptions `json:"database" mapstructure:"database"`

	// Watch 文件变化时自动重新加载。
	Watch bool `json:"watch" mapstructure:"watch"`

	// Debounce 文件事件合并窗口。
	Debounce time.Duration `json:"debounce" mapstructure:"debounce"`

	// IndexWorkers 构建索引的并发数，<=0 时使用 CPU 数。
	IndexWorkers int `json:"index-workers" mapstructure:"index-workers"`
}

// DatabaseOptions 数据库语料来源配置。
type DatabaseOptions struct {
	// Driver 数据库驱动（sqlite, postgres, mysql）。
	Driver string `json:"driver" mapstructure:"driver"`

	// DSN 连接串。
	DSN string `json:"-" mapstructure:"dsn"`

	// Table 文档表名。
	Table string `json:"table" mapstructure:"table"`
}

// NewOptions 创建默认语料配置。
func NewOptions() *Options {
	return &Options{
		Source: SourceFile,
		Path:   "data/iwac_documents.json",
		Database: &DatabaseOptions{
			Driver: "sqlite",
			Table:  "documents",
		},
		Debounce: 500 * time.Millisecond,
	}
}

// AddFlags adds flags for corpus options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "corpus."
	fs.StringVar(&o.Source, p+"source", o.Source, "Corpus source (file, database).")
	fs.StringVar(&o.Path, p+"path", o.Path, "Path of the preprocessed JSON corpus.")
	fs.BoolVar(&o.Watch, p+"watch", o.Watch, "Reload the corpus when the file changes.")
	fs.DurationVar(&o.Debounce, p+"debounce", o.Debounce, "Debounce window for corpus file events.")
	fs.IntVar(&o.IndexWorkers, p+"index-workers", o.IndexWorkers, "Workers used to build the index (0 = NumCPU).")

	if o.Database == nil {
		o.Database = &DatabaseOptions{}
	}
	fs.StringVar(&o.Database.Driver, p+"database.driver", o.Database.Driver, "Database driver (sqlite, postgres, mysql).")
	fs.StringVar(&o.Database.DSN, p+"database.dsn", o.Database.DSN, "Database DSN.")
	fs.StringVar(&o.Database.Table, p+"database.table", o.Database.Table, "Table holding the documents.")
}

// Validate validates the corpus options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	switch o.Source {
	case SourceFile:
		if o.Path == "" {
			errs = append(errs, fmt.Errorf("corpus.path is required for file source"))
		}
	case SourceDatabase:
		if o.Database == nil || o.Database.DSN == "" {
			errs = append(errs, fmt.Errorf("corpus.database.dsn is required for database source"))
		} else {
			switch o.Database.Driver {
			case "sqlite", "postgres", "mysql":
			default:
				errs = append(errs, fmt.Errorf("corpus.database.driver %q is not supported", o.Database.Driver))
			}
		}
		if o.Watch {
			errs = append(errs, fmt.Errorf("corpus.watch is only supported for file source"))
		}
	default:
		errs = append(errs, fmt.Errorf("corpus.source must be %q or %q", SourceFile, SourceDatabase))
	}
	if o.Debounce < 0 {
		errs = append(errs, fmt.Errorf("corpus.debounce must not be negative"))
	}
	return errs
}

// Complete completes the corpus options with defaults.
func (o *Options) Complete() error {
	if o.Database == nil {
		o.Database = &DatabaseOptions{Driver: "sqlite"}
	}
	if o.Database.Table == "" {
		o.Database.Table = "documents"
	}
	return nil
}
