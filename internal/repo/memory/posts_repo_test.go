package memory_test

import (
	"context"
	"errors"
	"testing"

	"cafeblog/internal/domain/post"
	"cafeblog/internal/repo/memory"
)

func seedPosts(t *testing.T, r *memory.PostsRepo) {
	t.Helper()

	ctx := context.Background()

	fixtures := []post.Post{
		{OwnerID: "alice", Title: "Espresso basics", Content: "grind fine, tamp evenly"},
		{OwnerID: "bob", Title: "Pour over notes", Content: "bloom for thirty seconds"},
		{OwnerID: "alice", Title: "Milk steaming", Content: "espresso pairs with microfoam"},
	}

	for _, p := range fixtures {
		if _, err := r.Create(ctx, p); err != nil {
			t.Fatalf("seed create failed: %v", err)
		}
	}
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	r := memory.NewPostsRepo()
	ctx := context.Background()

	first, _ := r.Create(ctx, post.Post{Title: "a", Content: "b"})
	second, _ := r.Create(ctx, post.Post{Title: "c", Content: "d"})

	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("got ids %d, %d, want 1, 2", first.ID, second.ID)
	}
}

func TestGetByIDMissing(t *testing.T) {
	r := memory.NewPostsRepo()

	_, err := r.GetByID(context.Background(), 42)

	if !errors.Is(err, post.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestSearch(t *testing.T) {
	r := memory.NewPostsRepo()
	seedPosts(t, r)

	tests := []struct {
		name      string
		filter    post.SearchFilter
		wantTotal int
		wantIDs   []int64
	}{
		{
			name:      "title_match_case_insensitive",
			filter:    post.SearchFilter{Kind: post.KindTitle, Keyword: "ESPRESSO"},
			wantTotal: 1,
			wantIDs:   []int64{1},
		},
		{
			name:      "content_match",
			filter:    post.SearchFilter{Kind: post.KindContent, Keyword: "espresso"},
			wantTotal: 1,
			wantIDs:   []int64{3},
		},
		{
			name:      "owner_exact_match",
			filter:    post.SearchFilter{Kind: post.KindOwner, Keyword: "alice"},
			wantTotal: 2,
			wantIDs:   []int64{1, 3},
		},
		{
			name:      "owner_is_not_substring",
			filter:    post.SearchFilter{Kind: post.KindOwner, Keyword: "ali"},
			wantTotal: 0,
		},
		{
			name:      "blank_keyword_returns_everything",
			filter:    post.SearchFilter{Kind: post.KindTitle, Keyword: "   "},
			wantTotal: 3,
			wantIDs:   []int64{1, 2, 3},
		},
		{
			name:      "no_match",
			filter:    post.SearchFilter{Kind: post.KindTitle, Keyword: "decaf"},
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			page, err := r.Search(context.Background(), tt.filter)

			if err != nil {
				t.Fatalf("search failed: %v", err)
			}

			if page.Total != tt.wantTotal {
				t.Fatalf("got total %d, want %d", page.Total, tt.wantTotal)
			}

			if len(page.Items) != len(tt.wantIDs) {
				t.Fatalf("got %d items, want %d", len(page.Items), len(tt.wantIDs))
			}

			for i, want := range tt.wantIDs {
				if page.Items[i].ID != want {
					t.Fatalf("item %d has id %d, want %d", i, page.Items[i].ID, want)
				}
			}
		})
	}
}

func TestSearchPagination(t *testing.T) {
	r := memory.NewPostsRepo()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := r.Create(ctx, post.Post{OwnerID: "alice", Title: "t", Content: "c"}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	page, err := r.Search(ctx, post.SearchFilter{Limit: 2, Offset: 2})

	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if page.Total != 5 {
		t.Fatalf("got total %d, want 5", page.Total)
	}

	if len(page.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(page.Items))
	}

	if page.Items[0].ID != 3 || page.Items[1].ID != 4 {
		t.Fatalf("got ids %d, %d, want 3, 4", page.Items[0].ID, page.Items[1].ID)
	}

	// offset past the end yields an empty page, same total
	page, err = r.Search(ctx, post.SearchFilter{Limit: 2, Offset: 10})

	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if page.Total != 5 || len(page.Items) != 0 {
		t.Fatalf("got total %d with %d items, want 5 with none", page.Total, len(page.Items))
	}
}

func TestUpdatePreservesOwnerAndCreationStamps(t *testing.T) {
	r := memory.NewPostsRepo()
	ctx := context.Background()

	created, _ := r.Create(ctx, post.Post{OwnerID: "alice", Title: "before", Content: "c", CreatedBy: "alice"})

	created.Title = "after"
	created.OwnerID = "mallory"

	updated, err := r.Update(ctx, created)

	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.Title != "after" {
		t.Fatalf("got title %q, want after", updated.Title)
	}

	if updated.OwnerID != "alice" {
		t.Fatalf("owner changed to %q, ownership is immutable", updated.OwnerID)
	}
}

func TestUpdateMissing(t *testing.T) {
	r := memory.NewPostsRepo()

	_, err := r.Update(context.Background(), post.Post{ID: 99, Title: "t", Content: "c"})

	if !errors.Is(err, post.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	r := memory.NewPostsRepo()
	ctx := context.Background()

	created, _ := r.Create(ctx, post.Post{Title: "t", Content: "c"})

	if err := r.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if err := r.Delete(ctx, created.ID); !errors.Is(err, post.ErrNotFound) {
		t.Fatalf("second delete got %v, want ErrNotFound", err)
	}
}

func TestListAttachmentPaths(t *testing.T) {
	r := memory.NewPostsRepo()
	ctx := context.Background()

	_, _ = r.Create(ctx, post.Post{Title: "plain", Content: "c"})
	_, _ = r.Create(ctx, post.Post{Title: "filed", Content: "c", Attachment: &post.Attachment{
		FileName: "a.txt",
		FilePath: "/uploads/a.txt",
	}})

	paths, err := r.ListAttachmentPaths(ctx)

	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(paths) != 1 || paths[0] != "/uploads/a.txt" {
		t.Fatalf("got %v, want just /uploads/a.txt", paths)
	}
}
