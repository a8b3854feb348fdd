package observability

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveDBCountsErrorsPerOp(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	if err := p.ObserveDB("posts.search", func() error { return nil }); err != nil {
		t.Fatalf("got %v, want nil", err)
	}

	dup := &pgconn.PgError{Code: "23505"}

	err := p.ObserveDB("posts.create", func() error { return dup })

	if !errors.Is(err, dup) {
		t.Fatalf("error should pass through, got %v", err)
	}

	got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("posts.create", "unique_violation"))

	if got != 1 {
		t.Fatalf("got %v unique_violation errors for posts.create, want 1", got)
	}

	got = testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("posts.search", "unknown"))

	if got != 0 {
		t.Fatalf("a successful op should record no error, got %v", got)
	}
}

func TestClassifyDBErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"unique violation", &pgconn.PgError{Code: "23505"}, "unique_violation"},
		{"foreign key", &pgconn.PgError{Code: "23503"}, "foreign_key_violation"},
		{"unmapped pg code", &pgconn.PgError{Code: "22001"}, "pg_22001"},
		{"deadline", errors.New("context deadline exceeded"), "timeout"},
		{"connection", errors.New("connection refused"), "connection"},
		{"anything else", errors.New("boom"), "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyDBErr(tc.err); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
