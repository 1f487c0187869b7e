// Package model defines the data models for iwac-chat.
package model

import "slices"

// Document 表示语料库中的一篇文档，加载后只读。
type Document struct {
	ID        string   `json:"id"`
	Title     string   `json:"title" validate:"required"`
	FullText  string   `json:"full_text" validate:"required"`
	Publisher string   `json:"publisher"`
	Date      string   `json:"date"`
	URL       string   `json:"url"`
	Language  string   `json:"language,omitempty"`
	Subject   []string `json:"subject,omitempty"`
	Spatial   []string `json:"spatial,omitempty"`
}

// Clone 返回不与原文档共享切片的副本。
func (d *Document) Clone() Document {
	c := *d
	c.Subject = slices.Clone(d.Subject)
	c.Spatial = slices.Clone(d.Spatial)
	return c
}

// Source returns the citation view of the document.
func (d *Document) Source() Source {
	return Source{
		Title:     d.Title,
		URL:       d.URL,
		Publisher: d.Publisher,
		Date:      d.Date,
	}
}

// Source 是返回给调用方的文档引用信息。
type Source struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Publisher string `json:"publisher"`
	Date      string `json:"date"`
}
