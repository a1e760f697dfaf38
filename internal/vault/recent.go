package vault

import (
	"slices"
	"sync"
	"time"

	"github.com/taigrr/docvault/internal/types"
)

// MaxRecent bounds the recent documents list.
const MaxRecent = 10

// RecentDocument is an entry of the recently opened list.
type RecentDocument struct {
	ProjectID string    `json:"project_id"`
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	OpenedAt  time.Time `json:"opened_at"`
}

type recentList struct {
	mu    sync.Mutex
	items []RecentDocument
}

func (r *recentList) add(rec types.DocumentRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = slices.DeleteFunc(r.items, func(d RecentDocument) bool {
		return d.ProjectID == rec.ProjectID && d.Path == rec.Path
	})
	entry := RecentDocument{
		ProjectID: rec.ProjectID,
		Path:      rec.Path,
		Title:     rec.Title,
		Type:      rec.Type,
		OpenedAt:  timeNow(),
	}
	r.items = slices.Insert(r.items, 0, entry)
	if len(r.items) > MaxRecent {
		r.items = r.items[:MaxRecent]
	}
}

// prune drops entries of projectID that are no longer indexed and refreshes
// the titles of the rest.
func (r *recentList) prune(projectID string, docs []types.DocumentRecord) {
	byPath := make(map[string]types.DocumentRecord, len(docs))
	for _, doc := range docs {
		byPath[doc.Path] = doc
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	for _, item := range r.items {
		if item.ProjectID == projectID {
			doc, ok := byPath[item.Path]
			if !ok {
				continue
			}
			item.Title = doc.Title
			item.Type = doc.Type
		}
		kept = append(kept, item)
	}
	r.items = kept
}

func (r *recentList) list(projectID string) []RecentDocument {
	r.mu.Lock()
	defer r.mu.Unlock()
	if projectID == "" {
		return slices.Clone(r.items)
	}
	var out []RecentDocument
	for _, item := range r.items {
		if item.ProjectID == projectID {
			out = append(out, item)
		}
	}
	return out
}

func (r *recentList) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}
