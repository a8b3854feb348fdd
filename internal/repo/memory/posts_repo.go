package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"cafeblog/internal/domain/post"
)

// PostsRepo keeps posts in a map guarded by a mutex. Search semantics match
// the postgres implementation: case-insensitive substring on title/content,
// exact match on owner, insertion (id) order, windowed total.
type PostsRepo struct {
	mu     sync.RWMutex
	nextID int64
	posts  map[int64]post.Post
}

func NewPostsRepo() *PostsRepo {
	return &PostsRepo{
		nextID: 1,
		posts:  make(map[int64]post.Post),
	}
}

func (r *PostsRepo) Create(_ context.Context, p post.Post) (post.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = r.nextID
	r.nextID++
	r.posts[p.ID] = clone(p)

	return p, nil
}

func (r *PostsRepo) GetByID(_ context.Context, id int64) (post.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]

	if !ok {
		return post.Post{}, post.ErrNotFound
	}

	return clone(p), nil
}

func (r *PostsRepo) Search(_ context.Context, filter post.SearchFilter) (post.Page, error) {
	filter = filter.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	keyword := strings.ToLower(filter.Keyword)

	matched := make([]post.Post, 0, len(r.posts))

	for _, p := range r.posts {
		switch filter.Kind {
		case post.KindTitle:
			if !strings.Contains(strings.ToLower(p.Title), keyword) {
				continue
			}
		case post.KindContent:
			if !strings.Contains(strings.ToLower(p.Content), keyword) {
				continue
			}
		case post.KindOwner:
			if p.OwnerID != filter.Keyword {
				continue
			}
		}

		matched = append(matched, clone(p))
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)

	if filter.Offset >= total {
		matched = nil
	} else {
		matched = matched[filter.Offset:]
	}

	if len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	items := make([]post.Post, len(matched))
	copy(items, matched)

	return post.Page{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (r *PostsRepo) Update(_ context.Context, p post.Post) (post.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.posts[p.ID]

	if !ok {
		return post.Post{}, post.ErrNotFound
	}

	p.OwnerID = existing.OwnerID
	p.CreatedAt = existing.CreatedAt
	p.CreatedBy = existing.CreatedBy
	r.posts[p.ID] = clone(p)

	return p, nil
}

func (r *PostsRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return post.ErrNotFound
	}

	delete(r.posts, id)

	return nil
}

func (r *PostsRepo) ListAttachmentPaths(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var paths []string

	for _, p := range r.posts {
		if p.Attachment != nil {
			paths = append(paths, p.Attachment.FilePath)
		}
	}

	return paths, nil
}

// clone keeps callers from mutating the stored attachment through the pointer.
func clone(p post.Post) post.Post {
	if p.Attachment != nil {
		a := *p.Attachment
		p.Attachment = &a
	}

	return p
}
