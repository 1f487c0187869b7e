package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kart-io/iwac-chat/internal/model"
	"github.com/kart-io/iwac-chat/pkg/utils/errors"
)

// DocumentRow 是数据库中一条文档记录，subject 和 spatial 以 "|" 分隔存储。
// Position 决定语料顺序，相同时按 id 排序。
type DocumentRow struct {
	ID        string `gorm:"column:id;primaryKey"`
	Position  int    `gorm:"column:position;index"`
	Title     string `gorm:"column:title"`
	FullText  string `gorm:"column:full_text"`
	Publisher string `gorm:"column:publisher"`
	Date      string `gorm:"column:date"`
	URL       string `gorm:"column:url"`
	Language  string `gorm:"column:language"`
	Subject   string `gorm:"column:subject"`
	Spatial   string `gorm:"column:spatial"`
}

// NewDocumentRow converts a document into its table representation at the
// given corpus position.
func NewDocumentRow(doc *model.Document, position int) DocumentRow {
	return DocumentRow{
		ID:        doc.ID,
		Position:  position,
		Title:     doc.Title,
		FullText:  doc.FullText,
		Publisher: doc.Publisher,
		Date:      doc.Date,
		URL:       doc.URL,
		Language:  doc.Language,
		Subject:   strings.Join(doc.Subject, "|"),
		Spatial:   strings.Join(doc.Spatial, "|"),
	}
}

func (r *DocumentRow) toDocument() model.Document {
	return model.Document{
		ID:        strings.TrimSpace(r.ID),
		Title:     strings.TrimSpace(r.Title),
		FullText:  strings.TrimSpace(r.FullText),
		Publisher: strings.TrimSpace(r.Publisher),
		Date:      strings.TrimSpace(r.Date),
		URL:       strings.TrimSpace(r.URL),
		Language:  strings.TrimSpace(r.Language),
		Subject:   splitValues(strings.Split(r.Subject, "|")),
		Spatial:   splitValues(strings.Split(r.Spatial, "|")),
	}
}

// OpenDB 按驱动名打开数据库连接（sqlite, postgres, mysql）。
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, errors.ErrCorpusLoad.WithCause(fmt.Errorf("unsupported database driver %q", driver))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.ErrCorpusLoad.WithCause(err)
	}
	return db, nil
}

// DBLoader 从数据库表读取文档，按 position 排序。
type DBLoader struct {
	db    *gorm.DB
	table string
}

// NewDBLoader creates a DBLoader reading from table.
func NewDBLoader(db *gorm.DB, table string) *DBLoader {
	if table == "" {
		table = "documents"
	}
	return &DBLoader{db: db, table: table}
}

// Describe implements Loader.
func (l *DBLoader) Describe() string {
	return "database:" + l.db.Dialector.Name() + "/" + l.table
}

// Load implements Loader.
func (l *DBLoader) Load(ctx context.Context) ([]model.Document, error) {
	var rows []DocumentRow
	if err := l.db.WithContext(ctx).Table(l.table).Order("position").Order("id").Find(&rows).Error; err != nil {
		return nil, errors.ErrCorpusLoad.WithCause(err)
	}

	docs := make([]model.Document, 0, len(rows))
	for i := range rows {
		doc := rows[i].toDocument()
		if err := validateDocument(&doc); err != nil {
			return nil, errors.ErrCorpusLoad.WithCause(fmt.Errorf("row %q: %w", rows[i].ID, err))
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Close 关闭底层连接池。
func (l *DBLoader) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
