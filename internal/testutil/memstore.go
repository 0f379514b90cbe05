package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/xxxsen/inkwell/internal/model"
	appErr "github.com/xxxsen/inkwell/internal/pkg/errors"
	"github.com/xxxsen/inkwell/internal/repo"
)

// MemDocuments is an in-memory document store with the ownership and
// soft-delete rules of the postgres repo.
type MemDocuments struct {
	mu   sync.Mutex
	docs map[string]model.Document
}

func NewMemDocuments() *MemDocuments {
	return &MemDocuments{docs: make(map[string]model.Document)}
}

func (m *MemDocuments) Create(_ context.Context, doc *model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[doc.ID]; ok {
		return appErr.ErrConflict
	}
	m.docs[doc.ID] = *doc
	return nil
}

func (m *MemDocuments) Save(_ context.Context, doc *model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.docs[doc.ID]
	if !ok || cur.UserID != doc.UserID || cur.State != repo.DocumentStateNormal {
		return appErr.ErrNotFound
	}
	cur.Title, cur.Content, cur.Metrics, cur.Mtime = doc.Title, doc.Content, doc.Metrics, doc.Mtime
	m.docs[doc.ID] = cur
	return nil
}

func (m *MemDocuments) Delete(_ context.Context, userID, docID string, mtime int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.docs[docID]
	if !ok || cur.UserID != userID || cur.State != repo.DocumentStateNormal {
		return appErr.ErrNotFound
	}
	cur.State, cur.Mtime = repo.DocumentStateDeleted, mtime
	m.docs[docID] = cur
	return nil
}

func (m *MemDocuments) GetByID(_ context.Context, userID, docID string) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.docs[docID]
	if !ok || cur.UserID != userID || cur.State != repo.DocumentStateNormal {
		return nil, appErr.ErrNotFound
	}
	return &cur, nil
}

func (m *MemDocuments) List(_ context.Context, userID string, limit, offset uint) ([]model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Document, 0)
	for _, d := range m.docs {
		if d.UserID == userID && d.State == repo.DocumentStateNormal {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if int(offset) >= len(out) {
		return []model.Document{}, nil
	}
	out = out[offset:]
	if limit > 0 && int(limit) < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemDocuments) ListStaleIDs(_ context.Context, before int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, d := range m.docs {
		if d.Mtime < before {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Touch overrides the mtime of docID.
func (m *MemDocuments) Touch(docID string, mtime int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.docs[docID]
	d.Mtime = mtime
	m.docs[docID] = d
}

type MemVersions struct {
	mu       sync.Mutex
	versions []model.DocumentVersion
}

func (m *MemVersions) Create(_ context.Context, v *model.DocumentVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.versions {
		if cur.DocumentID == v.DocumentID && cur.ContentHash == v.ContentHash {
			return appErr.ErrConflict
		}
	}
	m.versions = append(m.versions, *v)
	return nil
}

func (m *MemVersions) Exists(_ context.Context, docID, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.versions {
		if cur.DocumentID == docID && cur.ContentHash == hash {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemVersions) List(_ context.Context, userID, docID string, limit uint) ([]model.DocumentVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.DocumentVersion, 0)
	for _, v := range m.newestFirst() {
		if v.UserID == userID && v.DocumentID == docID {
			out = append(out, v)
		}
	}
	if limit > 0 && int(limit) < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// newestFirst mirrors the "ctime desc, id desc" ordering of the sql store.
func (m *MemVersions) newestFirst() []model.DocumentVersion {
	out := append([]model.DocumentVersion(nil), m.versions...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Ctime != out[j].Ctime {
			return out[i].Ctime > out[j].Ctime
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *MemVersions) GetByID(_ context.Context, userID, docID, versionID string) (*model.DocumentVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.versions {
		if v.ID == versionID && v.UserID == userID && v.DocumentID == docID {
			return &v, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (m *MemVersions) ListOverLimit(_ context.Context, keep int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, v := range m.versions {
		counts[v.DocumentID]++
	}
	var ids []string
	for id, n := range counts {
		if n > keep {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MemVersions) DeleteOldVersions(_ context.Context, docID string, keep int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if keep <= 0 {
		return 0, nil
	}
	seen := 0
	var deleted int64
	kept := make([]model.DocumentVersion, 0, len(m.versions))
	for _, v := range m.newestFirst() {
		if v.DocumentID == docID {
			seen++
			if seen > keep {
				deleted++
				continue
			}
		}
		kept = append(kept, v)
	}
	m.versions = kept
	return deleted, nil
}

type MemSuggestions struct {
	mu    sync.Mutex
	items map[string][]model.StoredSuggestion
}

func NewMemSuggestions() *MemSuggestions {
	return &MemSuggestions{items: make(map[string][]model.StoredSuggestion)}
}

func (m *MemSuggestions) Replace(_ context.Context, _ string, docID string, items []model.StoredSuggestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[docID] = append([]model.StoredSuggestion(nil), items...)
	return nil
}

func (m *MemSuggestions) ListByDocument(_ context.Context, _ string, docID string) ([]model.StoredSuggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]model.StoredSuggestion{}, m.items[docID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartIndex < out[j].StartIndex })
	return out, nil
}

func (m *MemSuggestions) DeleteByDocumentIDs(_ context.Context, ids []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		n += int64(len(m.items[id]))
		delete(m.items, id)
	}
	return n, nil
}
