package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/iwac-chat/internal/model"
	"github.com/kart-io/iwac-chat/pkg/infra/pool"
	"github.com/kart-io/iwac-chat/pkg/utils/errors"
	"github.com/kart-io/iwac-chat/pkg/utils/json"
	"github.com/kart-io/iwac-chat/pkg/validator"
)

// Loader 从某个来源读取全部文档。
type Loader interface {
	// Load 返回按来源顺序排列的文档，任何一条记录不合法都使整个加载失败。
	Load(ctx context.Context) ([]model.Document, error)
	// Describe 返回用于日志和统计的来源描述。
	Describe() string
}

// Load 通过 loader 读取文档并构建 Corpus。
func Load(ctx context.Context, loader Loader, p *pool.Pool) (*Corpus, error) {
	docs, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	corpus, err := New(loader.Describe(), docs, p)
	if err != nil {
		return nil, err
	}
	logger.Infow("Corpus loaded",
		"source", corpus.Source(),
		"documents", corpus.Len(),
		"vocabulary", corpus.Index().VocabularySize(),
	)
	return corpus, nil
}

// FileLoader 读取预处理后的 JSON 语料文件。
type FileLoader struct {
	Path string
}

// NewFileLoader creates a FileLoader for path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

// Describe implements Loader.
func (l *FileLoader) Describe() string {
	return "file:" + l.Path
}

// Load implements Loader.
func (l *FileLoader) Load(_ context.Context) ([]model.Document, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, errors.ErrCorpusLoad.WithCause(err)
	}
	docs, err := ParseDocuments(data)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// rawDocument 是语料文件中的一条记录。
type rawDocument struct {
	ID        flexString `json:"id"`
	Title     string     `json:"title"`
	FullText  string     `json:"full_text"`
	Content   string     `json:"content"`
	Publisher string     `json:"publisher"`
	Date      flexString `json:"date"`
	URL       string     `json:"url"`
	Language  string     `json:"language"`
	Subject   stringList `json:"subject"`
	Spatial   stringList `json:"spatial"`
}

type corpusFile struct {
	Documents *[]rawDocument `json:"documents"`
}

// ParseDocuments 解析 JSON 数组或 {"documents": [...]} 形式的语料。
// 缺少 id 的记录使用 "doc-<序号>"，序号从 1 开始。
func ParseDocuments(data []byte) ([]model.Document, error) {
	var raws []rawDocument
	if json.IsArray(data) {
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, errors.ErrCorpusLoad.WithCause(err)
		}
	} else {
		var file corpusFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, errors.ErrCorpusLoad.WithCause(err)
		}
		if file.Documents == nil {
			return nil, errors.ErrCorpusLoad.WithCause(fmt.Errorf("missing \"documents\" array"))
		}
		raws = *file.Documents
	}

	docs := make([]model.Document, 0, len(raws))
	for i := range raws {
		doc := raws[i].toDocument(i + 1)
		if err := validateDocument(&doc); err != nil {
			return nil, errors.ErrCorpusLoad.WithCause(fmt.Errorf("record %d: %w", i+1, err))
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *rawDocument) toDocument(position int) model.Document {
	text := r.FullText
	if strings.TrimSpace(text) == "" {
		text = r.Content
	}
	id := strings.TrimSpace(string(r.ID))
	if id == "" {
		id = "doc-" + strconv.Itoa(position)
	}
	return model.Document{
		ID:        id,
		Title:     strings.TrimSpace(r.Title),
		FullText:  strings.TrimSpace(text),
		Publisher: strings.TrimSpace(r.Publisher),
		Date:      strings.TrimSpace(string(r.Date)),
		URL:       strings.TrimSpace(r.URL),
		Language:  strings.TrimSpace(r.Language),
		Subject:   []string(r.Subject),
		Spatial:   []string(r.Spatial),
	}
}

func validateDocument(doc *model.Document) error {
	if verrs := validator.StructWithLang(doc, validator.LangEN); verrs.HasErrors() {
		return verrs
	}
	return nil
}

// flexString 接受 JSON 字符串或数字，例如 "1996" 与 1996。
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = flexString(data)
	return nil
}

// stringList 接受字符串数组，或以 "|" 分隔的单个字符串。
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	var values []string
	if json.IsArray(data) {
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
	} else {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		values = strings.Split(s, "|")
	}
	*l = splitValues(values)
	return nil
}

func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
