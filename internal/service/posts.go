package service

import (
	"context"
	"log/slog"
	"time"

	"cafeblog/internal/authz"
	"cafeblog/internal/domain/account"
	"cafeblog/internal/domain/post"
	"cafeblog/internal/storage"
)

type PostStore interface {
	Create(ctx context.Context, p post.Post) (post.Post, error)
	GetByID(ctx context.Context, id int64) (post.Post, error)
	Search(ctx context.Context, filter post.SearchFilter) (post.Page, error)
	Update(ctx context.Context, p post.Post) (post.Post, error)
	Delete(ctx context.Context, id int64) error
}

type AccountGetter interface {
	GetByID(ctx context.Context, userID string) (account.Account, error)
}

type AttachmentStore interface {
	Store(up storage.Upload) (post.Attachment, error)
	Replace(existing *post.Attachment, up storage.Upload) (post.Attachment, error)
	Remove(a *post.Attachment) error
}

// PostService couples the post record lifecycle to the attached-file
// lifecycle. The file write and the record write are two separate resources;
// consistency between them is best effort and the failure rules differ per
// operation (see Create vs Delete).
type PostService struct {
	posts    PostStore
	accounts AccountGetter
	files    AttachmentStore
	log      *slog.Logger
	now      func() time.Time
}

func NewPostService(posts PostStore, accounts AccountGetter, files AttachmentStore, log *slog.Logger) *PostService {
	return &PostService{
		posts:    posts,
		accounts: accounts,
		files:    files,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create stores the attachment before the record: a file that failed to
// write must never be referenced by a persisted post.
func (s *PostService) Create(ctx context.Context, principal account.Principal, in post.Input, up *storage.Upload) (post.Post, error) {
	if err := authz.Authorize(principal, authz.OpCreatePost, ""); err != nil {
		return post.Post{}, err
	}

	if err := in.Validate(); err != nil {
		return post.Post{}, err
	}

	owner, err := s.accounts.GetByID(ctx, principal.UserID)

	if err != nil {
		return post.Post{}, err
	}

	now := s.now()

	p := post.Post{
		OwnerID:    owner.UserID,
		Title:      in.Title,
		Content:    in.Content,
		CreatedAt:  now,
		CreatedBy:  principal.UserID,
		ModifiedAt: now,
		ModifiedBy: principal.UserID,
	}

	if up != nil {
		att, err := s.files.Store(*up)

		if err != nil {
			return post.Post{}, err
		}

		p.Attachment = &att
	}

	created, err := s.posts.Create(ctx, p)

	if err != nil {
		return post.Post{}, err
	}

	s.log.Info("post created", "post_id", created.ID, "owner_id", created.OwnerID, "has_attachment", created.Attachment != nil)

	return created, nil
}

func (s *PostService) Update(ctx context.Context, principal account.Principal, id int64, in post.Input, up *storage.Upload) (post.Post, error) {
	existing, err := s.posts.GetByID(ctx, id)

	if err != nil {
		return post.Post{}, err
	}

	if err := authz.Authorize(principal, authz.OpUpdatePost, existing.OwnerID); err != nil {
		return post.Post{}, err
	}

	if err := in.Validate(); err != nil {
		return post.Post{}, err
	}

	existing.Title = in.Title
	existing.Content = in.Content

	if up != nil {
		att, err := s.files.Replace(existing.Attachment, *up)

		if err != nil {
			return post.Post{}, err
		}

		existing.Attachment = &att
	}

	existing.ModifiedAt = s.now()
	existing.ModifiedBy = principal.UserID

	updated, err := s.posts.Update(ctx, existing)

	if err != nil {
		return post.Post{}, err
	}

	s.log.Info("post updated", "post_id", updated.ID, "modified_by", principal.UserID)

	return updated, nil
}

// Delete removes the file first, best effort: a failed file removal is
// logged and the record delete still proceeds. The sweeper has no record to
// reconcile against either way.
func (s *PostService) Delete(ctx context.Context, principal account.Principal, id int64) error {
	existing, err := s.posts.GetByID(ctx, id)

	if err != nil {
		return err
	}

	if err := authz.Authorize(principal, authz.OpDeletePost, existing.OwnerID); err != nil {
		return err
	}

	if err := s.files.Remove(existing.Attachment); err != nil {
		s.log.Warn("attachment cleanup failed, deleting record anyway", "post_id", id, "err", err)
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("post deleted", "post_id", id, "deleted_by", principal.UserID)

	return nil
}

// Search and Get are public reads, no authorization check.

func (s *PostService) Search(ctx context.Context, filter post.SearchFilter) (post.Page, error) {
	return s.posts.Search(ctx, filter.Normalize())
}

func (s *PostService) Get(ctx context.Context, id int64) (post.Post, error) {
	return s.posts.GetByID(ctx, id)
}
