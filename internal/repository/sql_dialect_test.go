package repository

import "testing"

func TestLikeOperatorByDialect(t *testing.T) {
	cases := []struct {
		dialect string
		want    string
	}{
		{dialect: "postgres", want: "ILIKE"},
		{dialect: "PostgreSQL", want: "ILIKE"},
		{dialect: "sqlite", want: "LIKE"},
		{dialect: "", want: "LIKE"},
		{dialect: "mysql", want: "LIKE"},
	}
	for _, tc := range cases {
		if got := likeOperatorByDialect(tc.dialect); got != tc.want {
			t.Fatalf("dialect %q want %s got %s", tc.dialect, tc.want, got)
		}
	}
}

func TestDBDialectNameNilSafe(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Fatalf("nil db dialect want sqlite got %s", got)
	}
}
