package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cafeblog/internal/domain/post"
	"cafeblog/internal/observability"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postColumns = `id, owner_id, title, content, file_name, file_path, file_type, created_at, created_by, modified_at, modified_by`

type PostsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// constructor function

func NewPostsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PostsRepo {
	return &PostsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *PostsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {

		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// attachmentColumns spreads the descriptor over three nullable columns; the
// scan side reassembles it so a row is either fully attached or not at all.
func attachmentColumns(a *post.Attachment) (name, path, contentType *string) {
	if a == nil {
		return nil, nil, nil
	}
	return &a.FileName, &a.FilePath, &a.ContentType
}

func scanPost(row pgx.Row) (post.Post, error) {
	var p post.Post
	var name, path, contentType *string

	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Title,
		&p.Content,
		&name,
		&path,
		&contentType,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.ModifiedAt,
		&p.ModifiedBy,
	)

	if err != nil {
		return post.Post{}, err
	}

	if name != nil && path != nil && contentType != nil {
		p.Attachment = &post.Attachment{FileName: *name, FilePath: *path, ContentType: *contentType}
	}

	return p, nil
}

func (r *PostsRepo) Create(ctx context.Context, p post.Post) (post.Post, error) {
	name, path, contentType := attachmentColumns(p.Attachment)

	err := r.observe("posts.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO posts(owner_id, title, content, file_name, file_path, file_type, created_at, created_by, modified_at, modified_by)
			VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING id`,
			p.OwnerID, p.Title, p.Content, name, path, contentType, p.CreatedAt, p.CreatedBy, p.ModifiedAt, p.ModifiedBy,
		).Scan(&p.ID)
	})

	if err != nil {
		return post.Post{}, err
	}

	return p, nil
}

func (r *PostsRepo) GetByID(ctx context.Context, id int64) (post.Post, error) {
	var p post.Post

	err := r.observe("posts.get_by_id", func() error {
		var scanErr error
		p, scanErr = scanPost(r.pool.QueryRow(ctx,
			`SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}

		return post.Post{}, err
	}

	return p, nil
}

func (r *PostsRepo) Search(ctx context.Context, filter post.SearchFilter) (post.Page, error) {
	filter = filter.Normalize()

	baseQuery := `SELECT ` + postColumns + `,
	  COUNT(*) OVER() AS TOTAL
	FROM posts
	`

	var conds []string
	var args []interface{}

	argsPosition := 1

	switch filter.Kind {
	case post.KindTitle:
		conds = append(conds, fmt.Sprintf("title ILIKE '%%' || $%d || '%%'", argsPosition))
		args = append(args, filter.Keyword)
		argsPosition++
	case post.KindContent:
		conds = append(conds, fmt.Sprintf("content ILIKE '%%' || $%d || '%%'", argsPosition))
		args = append(args, filter.Keyword)
		argsPosition++
	case post.KindOwner:
		conds = append(conds, fmt.Sprintf("owner_id = $%d", argsPosition))
		args = append(args, filter.Keyword)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// insertion order, stable for pagination
	query += fmt.Sprintf(" ORDER BY id ASC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)

	args = append(args, filter.Limit, filter.Offset)

	items := make([]post.Post, 0, filter.Limit)
	total := 0

	err := r.observe("posts.search", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var p post.Post
			var name, path, contentType *string
			var t int

			err = rows.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Content, &name, &path, &contentType,
				&p.CreatedAt, &p.CreatedBy, &p.ModifiedAt, &p.ModifiedBy, &t)

			if err != nil {
				return err
			}

			if name != nil && path != nil && contentType != nil {
				p.Attachment = &post.Attachment{FileName: *name, FilePath: *path, ContentType: *contentType}
			}

			total = t
			items = append(items, p)
		}

		return rows.Err()
	})

	if err != nil {
		return post.Page{}, err
	}

	return post.Page{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (r *PostsRepo) Update(ctx context.Context, p post.Post) (post.Post, error) {
	name, path, contentType := attachmentColumns(p.Attachment)

	var out post.Post

	err := r.observe("posts.update", func() error {
		var scanErr error
		out, scanErr = scanPost(r.pool.QueryRow(
			ctx,
			`UPDATE posts
				SET title = $2,
						content = $3,
						file_name = $4,
						file_path = $5,
						file_type = $6,
						modified_at = $7,
						modified_by = $8
			WHERE id = $1
			RETURNING `+postColumns,
			p.ID,
			p.Title,
			p.Content,
			name,
			path,
			contentType,
			p.ModifiedAt,
			p.ModifiedBy,
		))
		return scanErr
	})

	if err != nil {
		// if there are no rows matching the id
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}
		// if it is any other type of error
		return post.Post{}, err
	}

	return out, nil
}

func (r *PostsRepo) Delete(ctx context.Context, id int64) error {
	var tag pgconn.CommandTag

	err := r.observe("posts.delete", func() error {
		var execErr error
		tag, execErr = r.pool.Exec(ctx, `
			DELETE from posts WHERE id = $1
		`, id)
		return execErr
	})

	if err != nil {

		return err
	}

	// if no rows were deleted as a result return a not found error
	if tag.RowsAffected() == 0 {
		return post.ErrNotFound
	}

	return nil
}

// ListAttachmentPaths feeds the orphan sweeper: every file path any post
// still references.
func (r *PostsRepo) ListAttachmentPaths(ctx context.Context) ([]string, error) {
	var paths []string

	err := r.observe("posts.list_attachment_paths", func() error {
		rows, err := r.pool.Query(ctx, `SELECT file_path FROM posts WHERE file_path IS NOT NULL`)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var p string

			if err := rows.Scan(&p); err != nil {
				return err
			}

			paths = append(paths, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return paths, nil
}
