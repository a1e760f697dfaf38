package vaulterr

import (
	"errors"
	"strings"
)

// Locale selects the language of user-facing messages.
type Locale string

const (
	English Locale = "en"
	Chinese Locale = "zh"
)

// ParseLocale maps a config value onto a supported locale, defaulting to
// English.
func ParseLocale(s string) Locale {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "zh") {
		return Chinese
	}
	return English
}

type catalog struct {
	duplicateName   string
	duplicateFolder string
	notFound        string
	copySuffix      string
}

var catalogs = map[Locale]catalog{
	English: {
		duplicateName:   "A file with the same name already exists in this folder",
		duplicateFolder: "A folder with the same name already exists",
		notFound:        "Document not found",
		copySuffix:      "copy",
	},
	Chinese: {
		duplicateName:   "该文件夹下已存在同名文件",
		duplicateFolder: "已存在同名文件夹",
		notFound:        "文档不存在",
		copySuffix:      "副本",
	},
}

func (l Locale) catalog() catalog {
	if c, ok := catalogs[l]; ok {
		return c
	}
	return catalogs[English]
}

// CopySuffix is the word appended to the title of a copied document.
func (l Locale) CopySuffix() string {
	return l.catalog().copySuffix
}

// Message returns the text shown to a user for err. Name collisions and
// missing documents are translated; everything else surfaces as-is.
func (l Locale) Message(err error) string {
	if err == nil {
		return ""
	}
	c := l.catalog()
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case AlreadyExists:
			if e.Dir {
				return c.duplicateFolder
			}
			return c.duplicateName
		case NotFound:
			if e.Path != "" {
				return c.notFound + ": " + e.Path
			}
			return c.notFound
		}
	}
	return err.Error()
}
