package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeImportStore records calls so tests can check ordering and counts.
type fakeImportStore struct {
	existing   map[string]bool
	failCreate map[string]error
	findErr    error
	calls      []string
	created    []CreateUserData
	onCreate   func()
	onFind     func()
}

func newFakeImportStore(emails ...string) *fakeImportStore {
	f := &fakeImportStore{existing: map[string]bool{}, failCreate: map[string]error{}}
	for _, e := range emails {
		f.existing[e] = true
	}
	return f
}

func (f *fakeImportStore) FindUserByEmail(_ context.Context, email string) (*User, error) {
	f.calls = append(f.calls, "find:"+email)
	if f.onFind != nil {
		f.onFind()
	}
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.existing[email] {
		return &User{Email: email}, nil
	}
	return nil, ErrUserNotFound
}

func (f *fakeImportStore) CreateUser(_ context.Context, data CreateUserData) (*User, error) {
	f.calls = append(f.calls, "create:"+data.Email)
	if f.onCreate != nil {
		f.onCreate()
	}
	if err, ok := f.failCreate[data.Email]; ok {
		return nil, err
	}
	f.existing[data.Email] = true
	f.created = append(f.created, data)
	return &User{Email: data.Email}, nil
}

func TestParseUsers_Basic(t *testing.T) {
	header, rows, err := ParseUsers(strings.NewReader("email,full_name,role\na@x.com,Ann,ADMIN\n"))
	if err != nil {
		t.Fatalf("ParseUsers: %v", err)
	}

	if strings.Join(header, ",") != "email,full_name,role" {
		t.Errorf("header = %v", header)
	}
	want := CandidateUser{Email: "a@x.com", FullName: "Ann", Role: "ADMIN"}
	if len(rows) != 1 || rows[0] != want {
		t.Fatalf("rows = %+v, want [%+v]", rows, want)
	}
}

func TestParseUsers_Rows(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []CandidateUser
	}{
		{
			name:  "whitespace-only row is dropped",
			input: "email,full_name,role\n   \na@x.com,Ann,ADMIN\n",
			want:  []CandidateUser{{Email: "a@x.com", FullName: "Ann", Role: "ADMIN"}},
		},
		{
			name:  "empty email row is dropped",
			input: "email,full_name,role\n,Nobody,GUEST\nb@x.com,Bea,GUEST\n",
			want:  []CandidateUser{{Email: "b@x.com", FullName: "Bea", Role: "GUEST"}},
		},
		{
			name:  "values and header are trimmed",
			input: " email , full_name ,role\n  a@x.com ,  Ann  , ADMIN \n",
			want:  []CandidateUser{{Email: "a@x.com", FullName: "Ann", Role: "ADMIN"}},
		},
		{
			name:  "short row leaves trailing fields empty",
			input: "email,role,full_name\nc@x.com,GUEST\n",
			want:  []CandidateUser{{Email: "c@x.com", Role: "GUEST"}},
		},
		{
			name:  "long row ignores extra values",
			input: "email,full_name,role\nd@x.com,Dan,ADMIN,extra,more\n",
			want:  []CandidateUser{{Email: "d@x.com", FullName: "Dan", Role: "ADMIN"}},
		},
		{
			name:  "quoted field keeps its comma",
			input: "email,full_name,role,department\ne@x.com,\"Silva, João\",ADMIN,TI\n",
			want:  []CandidateUser{{Email: "e@x.com", FullName: "Silva, João", Role: "ADMIN", Department: "TI"}},
		},
		{
			name:  "unknown columns ignored and order free",
			input: "nickname,role,email,full_name,phone,department,team,position\nzz,MANAGER,f@x.com,Fay,11999999999,Ops,Core,Lead\n",
			want: []CandidateUser{{
				Email: "f@x.com", FullName: "Fay", Role: "MANAGER", Phone: "11999999999",
				Department: "Ops", Team: "Core", Position: "Lead",
			}},
		},
		{
			name:  "crlf line endings",
			input: "email,full_name,role\r\ng@x.com,Gil,GUEST\r\n",
			want:  []CandidateUser{{Email: "g@x.com", FullName: "Gil", Role: "GUEST"}},
		},
		{
			name:  "header only",
			input: "email,full_name,role\n",
			want:  []CandidateUser{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rows, err := ParseUsers(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ParseUsers: %v", err)
			}
			if len(rows) != len(tt.want) {
				t.Fatalf("got %d rows %+v, want %d", len(rows), rows, len(tt.want))
			}
			for i := range tt.want {
				if rows[i] != tt.want[i] {
					t.Errorf("row %d = %+v, want %+v", i, rows[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseUsers_RepeatedUnknownColumns(t *testing.T) {
	_, rows, err := ParseUsers(strings.NewReader("notes,email,notes,full_name,role\nx,a@x.com,y,Ann,ADMIN\n"))
	if err != nil {
		t.Fatalf("ParseUsers: %v", err)
	}
	want := CandidateUser{Email: "a@x.com", FullName: "Ann", Role: "ADMIN"}
	if len(rows) != 1 || rows[0] != want {
		t.Errorf("rows = %+v, want [%+v]", rows, want)
	}
}

func TestParseUsers_BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("email,full_name,role\na@x.com,Ann,ADMIN\n")...)
	header, rows, err := ParseUsers(bytes.NewReader(input))
	if err != nil {
		t.Fatalf("ParseUsers: %v", err)
	}
	if header[0] != "email" {
		t.Errorf("BOM not stripped from first header cell: %q", header[0])
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want 1", len(rows))
	}
}

func TestParseUsers_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"only blank lines", []byte("\n\n\n")},
		{"not utf-8", []byte("email,full_name,role\na@x.com,Jo\xe3o,ADMIN\n")},
		{"duplicate known column", []byte("email,full_name,email,role\na@x.com,Ann,b@x.com,ADMIN\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseUsers(bytes.NewReader(tt.input))
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestImportAll_PartialFailure(t *testing.T) {
	store := newFakeImportStore("dup@x.com")
	rows := []CandidateUser{
		{Email: "norole@x.com", FullName: "No Role"},
		{Email: "dup@x.com", FullName: "Dup", Role: "GUEST"},
		{Email: "new@x.com", FullName: "New", Role: "GUEST"},
	}

	result, err := ImportAll(context.Background(), rows, store, ImportOptions{})
	if err != nil {
		t.Fatalf("ImportAll: %v", err)
	}

	if result.SuccessCount != 1 {
		t.Errorf("SuccessCount = %d, want 1", result.SuccessCount)
	}
	want := []ImportError{
		{Row: 1, Email: "norole@x.com", Error: MsgMissingRequired},
		{Row: 2, Email: "dup@x.com", Error: MsgUserExists},
	}
	if len(result.Errors) != len(want) {
		t.Fatalf("Errors = %+v, want %+v", result.Errors, want)
	}
	for i := range want {
		if result.Errors[i] != want[i] {
			t.Errorf("Errors[%d] = %+v, want %+v", i, result.Errors[i], want[i])
		}
	}

	// Rows missing required fields never reach the store.
	wantCalls := []string{"find:dup@x.com", "find:new@x.com", "create:new@x.com"}
	if strings.Join(store.calls, " ") != strings.Join(wantCalls, " ") {
		t.Errorf("store calls = %v, want %v", store.calls, wantCalls)
	}
}

func TestImportAll_RerunReportsEveryRowAsExisting(t *testing.T) {
	rows := []CandidateUser{
		{Email: "a@x.com", FullName: "Ann", Role: "ADMIN"},
		{Email: "b@x.com", FullName: "Bea", Role: "GUEST"},
		{Email: "c@x.com", FullName: "Cid", Role: "GUEST"},
	}
	store := newFakeImportStore()

	first, err := ImportAll(context.Background(), rows, store, ImportOptions{})
	if err != nil || first.SuccessCount != 3 {
		t.Fatalf("first run = %+v, %v", first, err)
	}

	second, err := ImportAll(context.Background(), rows, store, ImportOptions{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.SuccessCount != 0 {
		t.Errorf("SuccessCount = %d, want 0", second.SuccessCount)
	}
	if len(second.Errors) != len(rows) {
		t.Fatalf("got %d errors, want %d", len(second.Errors), len(rows))
	}
	for i, e := range second.Errors {
		if e.Row != i+1 || e.Email != rows[i].Email || e.Error != MsgUserExists {
			t.Errorf("Errors[%d] = %+v", i, e)
		}
	}
}

func TestImportAll_MissingFields(t *testing.T) {
	rows := []CandidateUser{
		{FullName: "No Email", Role: "ADMIN"},
		{Email: "a@x.com", Role: "ADMIN"},
		{Email: "b@x.com", FullName: "B"},
	}

	result, _ := ImportAll(context.Background(), rows, newFakeImportStore(), ImportOptions{})

	if len(result.Errors) != 3 {
		t.Fatalf("got %d errors, want 3", len(result.Errors))
	}
	if result.Errors[0].Email != MissingEmailPlaceholder {
		t.Errorf("missing email placeholder = %q, want %q", result.Errors[0].Email, MissingEmailPlaceholder)
	}
	for _, e := range result.Errors {
		if e.Error != MsgMissingRequired {
			t.Errorf("row %d error = %q, want %q", e.Row, e.Error, MsgMissingRequired)
		}
	}
}

func TestImportAll_DuplicateWithinBatch(t *testing.T) {
	rows := []CandidateUser{
		{Email: "a@x.com", FullName: "Ann", Role: "ADMIN"},
		{Email: "a@x.com", FullName: "Ann Again", Role: "ADMIN"},
	}
	store := newFakeImportStore()

	result, _ := ImportAll(context.Background(), rows, store, ImportOptions{})

	if result.SuccessCount != 1 || len(result.Errors) != 1 || result.Errors[0].Row != 2 {
		t.Errorf("result = %+v, want row 2 reported as duplicate", result)
	}
	if len(store.created) != 1 {
		t.Errorf("created %d users, want 1", len(store.created))
	}
}

func TestImportAll_StoreErrors(t *testing.T) {
	store := newFakeImportStore()
	store.failCreate["boom@x.com"] = errors.New("connection refused")
	store.failCreate["blank@x.com"] = errors.New("")
	store.failCreate["race@x.com"] = ErrUserExists

	rows := []CandidateUser{
		{Email: "boom@x.com", FullName: "Boom", Role: "GUEST"},
		{Email: "blank@x.com", FullName: "Blank", Role: "GUEST"},
		{Email: "race@x.com", FullName: "Race", Role: "GUEST"},
		{Email: "ok@x.com", FullName: "Ok", Role: "GUEST"},
	}

	result, err := ImportAll(context.Background(), rows, store, ImportOptions{})
	if err != nil {
		t.Fatalf("ImportAll: %v", err)
	}

	wantMsgs := []string{"connection refused", MsgUnknownError, MsgUserExists}
	if len(result.Errors) != len(wantMsgs) {
		t.Fatalf("Errors = %+v", result.Errors)
	}
	for i, msg := range wantMsgs {
		if result.Errors[i].Error != msg {
			t.Errorf("Errors[%d] = %q, want %q", i, result.Errors[i].Error, msg)
		}
	}
	if result.SuccessCount != 1 {
		t.Errorf("SuccessCount = %d, want 1", result.SuccessCount)
	}
}

func TestImportAll_LookupFailure(t *testing.T) {
	store := newFakeImportStore()
	store.findErr = errors.New("connection reset by peer")

	result, _ := ImportAll(context.Background(), []CandidateUser{{Email: "a@x.com", FullName: "A", Role: "GUEST"}}, store, ImportOptions{})

	if len(result.Errors) != 1 || result.Errors[0].Error != "connection reset by peer" {
		t.Errorf("Errors = %+v", result.Errors)
	}
	if len(store.created) != 0 {
		t.Error("a failed lookup must not be followed by a create")
	}
}

func TestImportAll_Defaults(t *testing.T) {
	store := newFakeImportStore()
	rows := []CandidateUser{{Email: "a@x.com", FullName: "Ann", Role: "MANAGER", Team: "Core"}}

	if _, err := ImportAll(context.Background(), rows, store, ImportOptions{}); err != nil {
		t.Fatal(err)
	}
	got := store.created[0]
	if got.Status != StatusActive {
		t.Errorf("Status = %q, want active", got.Status)
	}
	if got.Permissions == nil || len(got.Permissions) != 0 {
		t.Errorf("Permissions = %v, want empty list", got.Permissions)
	}
	if got.Team != "Core" {
		t.Errorf("Team = %q, want Core", got.Team)
	}
}

func TestImportAll_RolePermissions(t *testing.T) {
	store := newFakeImportStore()
	rows := []CandidateUser{
		{Email: "a@x.com", FullName: "Ann", Role: "GUEST"},
		{Email: "b@x.com", FullName: "Bea", Role: "CUSTOM"},
	}

	if _, err := ImportAll(context.Background(), rows, store, ImportOptions{ApplyRolePermissions: true}); err != nil {
		t.Fatal(err)
	}

	guest := store.created[0].Permissions
	if len(guest) != 3 || !HasAllPermissions(guest, PermProjectsView, PermTemplatesView, PermReportsView) {
		t.Errorf("GUEST permissions = %v", guest)
	}
	if len(store.created[1].Permissions) != 0 {
		t.Errorf("unknown role should get no permissions, got %v", store.created[1].Permissions)
	}
}

func TestImportAll_Strict(t *testing.T) {
	rows := []CandidateUser{
		{Email: "not-an-email", FullName: "Bad", Role: "GUEST"},
		{Email: "doc@x.com", FullName: "Doc", Role: "GUEST", CPFCNPJ: "529.982.247-24"},
		{Email: "good@x.com", FullName: "Good", Role: "GUEST", CPFCNPJ: "529.982.247-25"},
	}

	store := newFakeImportStore()
	result, _ := ImportAll(context.Background(), rows, store, ImportOptions{Strict: true})

	if result.SuccessCount != 1 {
		t.Errorf("SuccessCount = %d, want 1", result.SuccessCount)
	}
	if len(result.Errors) != 2 || result.Errors[0].Error != MsgInvalidEmail || result.Errors[1].Error != MsgInvalidDocument {
		t.Errorf("Errors = %+v", result.Errors)
	}
	if len(store.calls) != 2 {
		t.Errorf("strict failures should not query the store, calls = %v", store.calls)
	}

	// Without Strict the rows reach the store unchanged.
	lenient := newFakeImportStore()
	result, _ = ImportAll(context.Background(), rows, lenient, ImportOptions{})
	if result.SuccessCount != 3 {
		t.Errorf("lenient SuccessCount = %d, want 3", result.SuccessCount)
	}
}

func TestImportAll_DryRun(t *testing.T) {
	store := newFakeImportStore("dup@x.com")
	rows := []CandidateUser{
		{Email: "dup@x.com", FullName: "Dup", Role: "GUEST"},
		{Email: "new@x.com", FullName: "New", Role: "GUEST"},
	}

	result, err := ImportAll(context.Background(), rows, store, ImportOptions{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if !result.DryRun || result.SuccessCount != 1 || len(result.Errors) != 1 {
		t.Errorf("result = %+v", result)
	}
	if len(store.created) != 0 {
		t.Errorf("dry run created %d users", len(store.created))
	}
}

func TestImportAll_DryRunDuplicateWithinBatch(t *testing.T) {
	rows := []CandidateUser{
		{Email: "n@x.com", FullName: "N", Role: "ADMIN"},
		{Email: "n@x.com", FullName: "N", Role: "ADMIN"},
		{Email: "m@x.com", FullName: "M", Role: "ADMIN"},
	}

	dry, err := ImportAll(context.Background(), rows, newFakeImportStore(), ImportOptions{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	live, err := ImportAll(context.Background(), rows, newFakeImportStore(), ImportOptions{})
	if err != nil {
		t.Fatal(err)
	}

	for name, result := range map[string]ImportResult{"dry run": dry, "real run": live} {
		if result.SuccessCount != 2 || len(result.Errors) != 1 {
			t.Fatalf("%s: result = %+v, want 2 successes and 1 error", name, result)
		}
		want := ImportError{Row: 2, Email: "n@x.com", Error: MsgUserExists}
		if result.Errors[0] != want {
			t.Errorf("%s: error = %+v, want %+v", name, result.Errors[0], want)
		}
	}
}

func TestImportAll_StoreFailureAfterCancel(t *testing.T) {
	tests := []struct {
		name  string
		setup func(store *fakeImportStore, cancel context.CancelFunc)
		calls int
	}{
		{
			name: "create fails",
			setup: func(store *fakeImportStore, cancel context.CancelFunc) {
				store.failCreate["b@x.com"] = errors.New("create user: context canceled")
				store.onCreate = func() {
					if len(store.created) == 1 {
						cancel()
					}
				}
			},
			calls: 4,
		},
		{
			name: "lookup fails",
			setup: func(store *fakeImportStore, cancel context.CancelFunc) {
				store.onFind = func() {
					if len(store.calls) == 3 {
						cancel()
						store.findErr = errors.New("find user: context canceled")
					}
				}
			},
			calls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			store := newFakeImportStore()
			tt.setup(store, cancel)

			rows := []CandidateUser{
				{Email: "a@x.com", FullName: "Ann", Role: "GUEST"},
				{Email: "b@x.com", FullName: "Bea", Role: "GUEST"},
				{Email: "c@x.com", FullName: "Cid", Role: "GUEST"},
			}
			result, err := ImportAll(ctx, rows, store, ImportOptions{})
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("err = %v, want context.Canceled", err)
			}
			if result.SuccessCount != 1 || len(result.Errors) != 0 {
				t.Errorf("result = %+v, want the interrupted row left out", result)
			}
			if len(store.calls) != tt.calls {
				t.Errorf("calls = %v, want %d", store.calls, tt.calls)
			}
		})
	}
}

func TestImportAll_CancellationStopsBeforeNextRow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := newFakeImportStore()
	store.onCreate = cancel // cancel while the first row is being created

	rows := []CandidateUser{
		{Email: "a@x.com", FullName: "Ann", Role: "GUEST"},
		{Email: "b@x.com", FullName: "Bea", Role: "GUEST"},
		{Email: "c@x.com", FullName: "Cid", Role: "GUEST"},
	}

	result, err := ImportAll(ctx, rows, store, ImportOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if result.SuccessCount != 1 || len(result.Errors) != 0 {
		t.Errorf("result = %+v, want only the first row accounted for", result)
	}
	if len(store.calls) != 2 {
		t.Errorf("store calls after cancel = %v, want none beyond row 1", store.calls)
	}
}

func TestImportAll_EmptyInput(t *testing.T) {
	result, err := ImportAll(context.Background(), nil, newFakeImportStore(), ImportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if result.SuccessCount != 0 || result.Errors == nil || len(result.Errors) != 0 {
		t.Errorf("result = %+v, want zero successes and an empty error list", result)
	}
}

func TestDropBlankEmails(t *testing.T) {
	rows := []CandidateUser{{Email: "a"}, {}, {Email: "b"}, {FullName: "x"}}
	kept, dropped := dropBlankEmails(rows)
	if len(kept) != 2 || dropped != 2 {
		t.Errorf("kept %d dropped %d, want 2 and 2", len(kept), dropped)
	}
}
