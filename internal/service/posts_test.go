package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"cafeblog/internal/authz"
	"cafeblog/internal/domain/account"
	"cafeblog/internal/domain/post"
	"cafeblog/internal/service"
	"cafeblog/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Fakes for the service dependencies

type fakePostStore struct {
	createFn func(ctx context.Context, p post.Post) (post.Post, error)
	getFn    func(ctx context.Context, id int64) (post.Post, error)
	searchFn func(ctx context.Context, filter post.SearchFilter) (post.Page, error)
	updateFn func(ctx context.Context, p post.Post) (post.Post, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (f *fakePostStore) Create(ctx context.Context, p post.Post) (post.Post, error) {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}

	p.ID = 1
	return p, nil
}

func (f *fakePostStore) GetByID(ctx context.Context, id int64) (post.Post, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return post.Post{}, post.ErrNotFound
}

func (f *fakePostStore) Search(ctx context.Context, filter post.SearchFilter) (post.Page, error) {
	if f.searchFn != nil {
		return f.searchFn(ctx, filter)
	}

	return post.Page{}, nil
}

func (f *fakePostStore) Update(ctx context.Context, p post.Post) (post.Post, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, p)
	}

	return p, nil
}

func (f *fakePostStore) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return nil
}

type fakeAccountGetter struct {
	getFn func(ctx context.Context, userID string) (account.Account, error)
}

func (f *fakeAccountGetter) GetByID(ctx context.Context, userID string) (account.Account, error) {
	if f.getFn != nil {
		return f.getFn(ctx, userID)
	}

	return account.Account{UserID: userID}, nil
}

type fakeFiles struct {
	storeFn   func(up storage.Upload) (post.Attachment, error)
	replaceFn func(existing *post.Attachment, up storage.Upload) (post.Attachment, error)
	removeFn  func(a *post.Attachment) error

	removed []*post.Attachment
}

func (f *fakeFiles) Store(up storage.Upload) (post.Attachment, error) {
	if f.storeFn != nil {
		return f.storeFn(up)
	}

	return post.Attachment{FileName: up.Name, FilePath: "/uploads/" + up.Name, ContentType: up.ContentType}, nil
}

func (f *fakeFiles) Replace(existing *post.Attachment, up storage.Upload) (post.Attachment, error) {
	if f.replaceFn != nil {
		return f.replaceFn(existing, up)
	}

	return post.Attachment{FileName: up.Name, FilePath: "/uploads/" + up.Name, ContentType: up.ContentType}, nil
}

func (f *fakeFiles) Remove(a *post.Attachment) error {
	f.removed = append(f.removed, a)

	if f.removeFn != nil {
		return f.removeFn(a)
	}

	return nil
}

func newPostService(posts *fakePostStore, accounts *fakeAccountGetter, files *fakeFiles) *service.PostService {
	return service.NewPostService(posts, accounts, files, discardLogger())
}

func member(id string) account.Principal {
	return account.Principal{UserID: id, Roles: []string{account.RoleUser}}
}

func admin(id string) account.Principal {
	return account.Principal{UserID: id, Roles: []string{account.RoleUser, account.RoleAdmin}}
}

// Create

func TestCreatePost(t *testing.T) {
	var persisted post.Post

	posts := &fakePostStore{
		createFn: func(ctx context.Context, p post.Post) (post.Post, error) {
			p.ID = 7
			persisted = p
			return p, nil
		},
	}

	svc := newPostService(posts, &fakeAccountGetter{}, &fakeFiles{})

	created, err := svc.Create(context.Background(), member("alice"), post.Input{Title: "hello", Content: "world"}, nil)

	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if created.ID != 7 {
		t.Fatalf("got id %d, want 7", created.ID)
	}

	if persisted.OwnerID != "alice" || persisted.CreatedBy != "alice" || persisted.ModifiedBy != "alice" {
		t.Fatalf("ownership and stamps not applied: %+v", persisted)
	}

	if persisted.Attachment != nil {
		t.Fatal("no upload was given, attachment must be nil")
	}
}

func TestCreatePostAnonymous(t *testing.T) {
	svc := newPostService(&fakePostStore{}, &fakeAccountGetter{}, &fakeFiles{})

	_, err := svc.Create(context.Background(), account.Principal{}, post.Input{Title: "t", Content: "c"}, nil)

	if !errors.Is(err, authz.ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}
}

func TestCreatePostValidation(t *testing.T) {
	called := false

	posts := &fakePostStore{
		createFn: func(ctx context.Context, p post.Post) (post.Post, error) {
			called = true
			return p, nil
		},
	}

	svc := newPostService(posts, &fakeAccountGetter{}, &fakeFiles{})

	_, err := svc.Create(context.Background(), member("alice"), post.Input{Title: "   ", Content: "c"}, nil)

	if !errors.Is(err, post.ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}

	if called {
		t.Fatal("store must not be reached on invalid input")
	}
}

func TestCreatePostWithAttachment(t *testing.T) {
	svc := newPostService(&fakePostStore{}, &fakeAccountGetter{}, &fakeFiles{})

	created, err := svc.Create(context.Background(), member("alice"),
		post.Input{Title: "t", Content: "c"},
		&storage.Upload{Data: []byte("x"), Name: "pic.png", ContentType: "image/png"})

	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if created.Attachment == nil || created.Attachment.FileName != "pic.png" {
		t.Fatalf("attachment not carried onto the record: %+v", created.Attachment)
	}
}

func TestCreatePostFileFailureAborts(t *testing.T) {
	recordWritten := false

	posts := &fakePostStore{
		createFn: func(ctx context.Context, p post.Post) (post.Post, error) {
			recordWritten = true
			return p, nil
		},
	}

	files := &fakeFiles{
		storeFn: func(up storage.Upload) (post.Attachment, error) {
			return post.Attachment{}, errors.New("disk full")
		},
	}

	svc := newPostService(posts, &fakeAccountGetter{}, files)

	_, err := svc.Create(context.Background(), member("alice"),
		post.Input{Title: "t", Content: "c"},
		&storage.Upload{Data: []byte("x"), Name: "pic.png"})

	if err == nil {
		t.Fatal("expected the file failure to surface")
	}

	if recordWritten {
		t.Fatal("record must not be written when the file write fails")
	}
}

func TestCreatePostEmptyUploadAborts(t *testing.T) {
	recordWritten := false

	posts := &fakePostStore{
		createFn: func(ctx context.Context, p post.Post) (post.Post, error) {
			recordWritten = true
			return p, nil
		},
	}

	files := &fakeFiles{
		storeFn: func(up storage.Upload) (post.Attachment, error) {
			return post.Attachment{}, storage.ErrEmptyAttachment
		},
	}

	svc := newPostService(posts, &fakeAccountGetter{}, files)

	_, err := svc.Create(context.Background(), member("alice"),
		post.Input{Title: "t", Content: "c"},
		&storage.Upload{Name: "empty.bin"})

	if !errors.Is(err, storage.ErrEmptyAttachment) {
		t.Fatalf("got %v, want ErrEmptyAttachment", err)
	}

	if recordWritten {
		t.Fatal("record must not be written for an empty upload")
	}
}

// Update

func TestUpdatePostAdminOnly(t *testing.T) {
	existing := post.Post{ID: 3, OwnerID: "alice", Title: "old", Content: "old"}

	posts := &fakePostStore{
		getFn: func(ctx context.Context, id int64) (post.Post, error) {
			return existing, nil
		},
	}

	svc := newPostService(posts, &fakeAccountGetter{}, &fakeFiles{})

	// even the author is turned away
	_, err := svc.Update(context.Background(), member("alice"), 3, post.Input{Title: "new", Content: "new"}, nil)

	if !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("author update got %v, want ErrForbidden", err)
	}

	updated, err := svc.Update(context.Background(), admin("root"), 3, post.Input{Title: "new", Content: "new"}, nil)

	if err != nil {
		t.Fatalf("admin update failed: %v", err)
	}

	if updated.Title != "new" || updated.ModifiedBy != "root" {
		t.Fatalf("update not applied: %+v", updated)
	}
}

func TestUpdatePostMissing(t *testing.T) {
	svc := newPostService(&fakePostStore{}, &fakeAccountGetter{}, &fakeFiles{})

	// missing post reads the same for every caller, role never enters into it
	_, err := svc.Update(context.Background(), member("alice"), 99, post.Input{Title: "t", Content: "c"}, nil)

	if !errors.Is(err, post.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestUpdatePostReplacesAttachment(t *testing.T) {
	old := &post.Attachment{FileName: "old.png", FilePath: "/uploads/old.png"}

	posts := &fakePostStore{
		getFn: func(ctx context.Context, id int64) (post.Post, error) {
			return post.Post{ID: 3, OwnerID: "alice", Title: "t", Content: "c", Attachment: old}, nil
		},
	}

	var replacedPrev *post.Attachment

	files := &fakeFiles{
		replaceFn: func(existing *post.Attachment, up storage.Upload) (post.Attachment, error) {
			replacedPrev = existing
			return post.Attachment{FileName: up.Name, FilePath: "/uploads/" + up.Name}, nil
		},
	}

	svc := newPostService(posts, &fakeAccountGetter{}, files)

	updated, err := svc.Update(context.Background(), admin("root"), 3,
		post.Input{Title: "t", Content: "c"},
		&storage.Upload{Data: []byte("x"), Name: "new.png"})

	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if replacedPrev != old {
		t.Fatal("previous attachment was not handed to the replace")
	}

	if updated.Attachment == nil || updated.Attachment.FileName != "new.png" {
		t.Fatalf("new attachment missing: %+v", updated.Attachment)
	}
}

func TestUpdatePostKeepsAttachmentWithoutUpload(t *testing.T) {
	old := &post.Attachment{FileName: "keep.png", FilePath: "/uploads/keep.png"}

	posts := &fakePostStore{
		getFn: func(ctx context.Context, id int64) (post.Post, error) {
			return post.Post{ID: 3, OwnerID: "alice", Title: "t", Content: "c", Attachment: old}, nil
		},
	}

	svc := newPostService(posts, &fakeAccountGetter{}, &fakeFiles{})

	updated, err := svc.Update(context.Background(), admin("root"), 3, post.Input{Title: "t2", Content: "c2"}, nil)

	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.Attachment == nil || updated.Attachment.FileName != "keep.png" {
		t.Fatal("attachment should survive a text-only update")
	}
}

// Delete

func TestDeletePostRemovesFileAndRecord(t *testing.T) {
	att := &post.Attachment{FileName: "a.png", FilePath: "/uploads/a.png"}

	deletedID := int64(0)

	posts := &fakePostStore{
		getFn: func(ctx context.Context, id int64) (post.Post, error) {
			return post.Post{ID: id, OwnerID: "alice", Attachment: att}, nil
		},
		deleteFn: func(ctx context.Context, id int64) error {
			deletedID = id
			return nil
		},
	}

	files := &fakeFiles{}

	svc := newPostService(posts, &fakeAccountGetter{}, files)

	if err := svc.Delete(context.Background(), admin("root"), 5); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if deletedID != 5 {
		t.Fatalf("record delete got id %d, want 5", deletedID)
	}

	if len(files.removed) != 1 || files.removed[0] != att {
		t.Fatal("attachment removal was not attempted")
	}
}

func TestDeletePostFileFailureStillDeletesRecord(t *testing.T) {
	recordDeleted := false

	posts := &fakePostStore{
		getFn: func(ctx context.Context, id int64) (post.Post, error) {
			return post.Post{ID: id, OwnerID: "alice", Attachment: &post.Attachment{FilePath: "/uploads/x"}}, nil
		},
		deleteFn: func(ctx context.Context, id int64) error {
			recordDeleted = true
			return nil
		},
	}

	files := &fakeFiles{
		removeFn: func(a *post.Attachment) error {
			return errors.New("permission denied")
		},
	}

	svc := newPostService(posts, &fakeAccountGetter{}, files)

	if err := svc.Delete(context.Background(), admin("root"), 5); err != nil {
		t.Fatalf("delete should swallow the file failure, got %v", err)
	}

	if !recordDeleted {
		t.Fatal("record delete must proceed despite the file failure")
	}
}

func TestDeletePostAuthorForbidden(t *testing.T) {
	posts := &fakePostStore{
		getFn: func(ctx context.Context, id int64) (post.Post, error) {
			return post.Post{ID: id, OwnerID: "alice"}, nil
		},
	}

	files := &fakeFiles{}

	svc := newPostService(posts, &fakeAccountGetter{}, files)

	err := svc.Delete(context.Background(), member("alice"), 5)

	if !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}

	if len(files.removed) != 0 {
		t.Fatal("no file should be touched on a forbidden delete")
	}
}

// Search

func TestSearchNormalizesFilter(t *testing.T) {
	var seen post.SearchFilter

	posts := &fakePostStore{
		searchFn: func(ctx context.Context, filter post.SearchFilter) (post.Page, error) {
			seen = filter
			return post.Page{}, nil
		},
	}

	svc := newPostService(posts, &fakeAccountGetter{}, &fakeFiles{})

	_, err := svc.Search(context.Background(), post.SearchFilter{Kind: post.KindTitle, Keyword: "  ", Limit: 500, Offset: -3})

	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if seen.Kind != post.KindAll {
		t.Fatalf("blank keyword should force kind=all, got %s", seen.Kind)
	}

	if seen.Limit != 100 || seen.Offset != 0 {
		t.Fatalf("pagination not clamped: limit=%d offset=%d", seen.Limit, seen.Offset)
	}
}
