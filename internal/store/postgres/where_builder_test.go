package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
)

func TestNewWhereBuilder(t *testing.T) {
	wb := NewWhereBuilder()

	if wb.argIndex != 1 {
		t.Errorf("expected argIndex to be 1, got %d", wb.argIndex)
	}
	if len(wb.conditions) != 0 || len(wb.args) != 0 {
		t.Errorf("expected empty builder, got %v %v", wb.conditions, wb.args)
	}
}

func TestWhereBuilder_Build_Empty(t *testing.T) {
	whereClause, args := NewWhereBuilder().Build()

	if whereClause != "" {
		t.Errorf("expected empty string for no conditions, got %q", whereClause)
	}
	if args != nil {
		t.Errorf("expected nil args for no conditions, got %v", args)
	}
}

func TestWhereBuilder_Add(t *testing.T) {
	tests := []struct {
		name       string
		pairs      [][2]string
		wantClause string
		wantArgs   []any
	}{
		{
			name:       "single condition",
			pairs:      [][2]string{{"status", "active"}},
			wantClause: " WHERE status = $1",
			wantArgs:   []any{"active"},
		},
		{
			name:       "multiple conditions",
			pairs:      [][2]string{{"status", "active"}, {"role", "ADMIN"}},
			wantClause: " WHERE status = $1 AND role = $2",
			wantArgs:   []any{"active", "ADMIN"},
		},
		{
			name:       "empty value skipped",
			pairs:      [][2]string{{"status", ""}, {"team", "Core"}},
			wantClause: " WHERE team = $1",
			wantArgs:   []any{"Core"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := NewWhereBuilder()
			for _, p := range tt.pairs {
				wb.Add(p[0], p[1])
			}

			gotClause, gotArgs := wb.Build()
			if gotClause != tt.wantClause {
				t.Errorf("clause = %q, want %q", gotClause, tt.wantClause)
			}
			if len(gotArgs) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", gotArgs, tt.wantArgs)
			}
			for i := range tt.wantArgs {
				if gotArgs[i] != tt.wantArgs[i] {
					t.Errorf("args[%d] = %v, want %v", i, gotArgs[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestWhereBuilder_AddSearch(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		columns    []string
		wantClause string
		wantArg    string
	}{
		{
			name:       "empty query skipped",
			query:      "",
			columns:    []string{"full_name"},
			wantClause: "",
		},
		{
			name:       "no columns skipped",
			query:      "ann",
			wantClause: "",
		},
		{
			name:       "single column",
			query:      "ann",
			columns:    []string{"full_name"},
			wantClause: ` WHERE ("full_name" ILIKE $1)`,
			wantArg:    "%ann%",
		},
		{
			name:       "columns share one placeholder",
			query:      "ann",
			columns:    []string{"full_name", "email"},
			wantClause: ` WHERE ("full_name" ILIKE $1 OR "email" ILIKE $1)`,
			wantArg:    "%ann%",
		},
		{
			name:       "wildcards escaped",
			query:      "50%_off",
			columns:    []string{"email"},
			wantClause: ` WHERE ("email" ILIKE $1)`,
			wantArg:    `%50\%\_off%`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := NewWhereBuilder()
			wb.AddSearch(tt.query, tt.columns...)

			gotClause, gotArgs := wb.Build()
			if gotClause != tt.wantClause {
				t.Errorf("clause = %q, want %q", gotClause, tt.wantClause)
			}
			if tt.wantArg == "" {
				if len(gotArgs) != 0 {
					t.Errorf("args = %v, want none", gotArgs)
				}
				return
			}
			if len(gotArgs) != 1 || gotArgs[0] != tt.wantArg {
				t.Errorf("args = %v, want [%q]", gotArgs, tt.wantArg)
			}
		})
	}
}

func TestWhereBuilder_AddUUID(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddUUID("user_id", "")
	wb.AddUUID("user_id", "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	wb.AddUUID("user_id", "not-a-uuid")

	clause, args := wb.Build()
	if clause != " WHERE user_id = $1 AND user_id = $2" {
		t.Errorf("clause = %q", clause)
	}
	if !args[0].(pgtype.UUID).Valid {
		t.Error("well-formed id should bind as a valid UUID")
	}
	if args[1].(pgtype.UUID).Valid {
		t.Error("malformed id should bind as NULL")
	}
}

func TestWhereBuilder_NextArgIndex(t *testing.T) {
	wb := NewWhereBuilder()

	if wb.NextArgIndex() != 1 {
		t.Errorf("expected initial NextArgIndex to be 1, got %d", wb.NextArgIndex())
	}

	wb.Add("role", "ADMIN")
	wb.Add("team", "")
	if wb.NextArgIndex() != 2 {
		t.Errorf("expected NextArgIndex after 1 add to be 2, got %d", wb.NextArgIndex())
	}

	wb.AddSearch("x", "full_name", "email")
	if wb.NextArgIndex() != 3 {
		t.Errorf("search should consume one placeholder, got %d", wb.NextArgIndex())
	}
}

func TestQuoteIdentifier(t *testing.T) {
	if got := quoteIdentifier(`we"ird`); got != `"we""ird"` {
		t.Errorf("quoteIdentifier = %s", got)
	}
}
