package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/useradmin/internal/config"
	"github.com/JonMunkholm/useradmin/internal/core"
	"github.com/JonMunkholm/useradmin/internal/store/memory"
)

func testApp(t *testing.T, store *memory.Store, env map[string]string) *app {
	t.Helper()
	vals := map[string]string{"DATABASE_URL": "postgres://localhost/test"}
	for k, v := range env {
		vals[k] = v
	}
	return &app{
		loadConfig: func() (*config.Config, error) {
			return config.LoadFrom(func(key string) string { return vals[key] })
		},
		openStores: func(context.Context, *config.Config) (core.Stores, func(), error) {
			return store.Stores(), func() {}, nil
		},
	}
}

func run(t *testing.T, a *app, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportCmd(t *testing.T) {
	store := memory.New()
	a := testApp(t, store, nil)

	path := writeFile(t, "users.csv", "email,full_name,role\n"+
		"ana@x.com,Ana,ADMIN\n"+
		",Nobody,GUEST\n"+
		"bruno@x.com,,GUEST\n")

	out, err := run(t, a, "", "import", path)
	if code := exitCode(err); code != exitRowErrors {
		t.Fatalf("exit code = %d (err %v), want %d", code, err, exitRowErrors)
	}
	if !strings.Contains(out, "1 imported, 1 errors, 1 skipped without email") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, core.MsgMissingRequired) {
		t.Errorf("output missing row error: %q", out)
	}

	u, err := store.FindUserByEmail(context.Background(), "ana@x.com")
	if err != nil {
		t.Fatalf("imported user missing: %v", err)
	}
	logs, _ := store.ListActivity(context.Background(), core.ActivityFilter{UserID: u.ID, Limit: 10})
	if len(logs) != 1 || logs[0].Details["actor"] != "cli" {
		t.Errorf("activity = %+v", logs)
	}

	// Re-running reports every row as a duplicate.
	out, err = run(t, a, "", "import", "--json", path)
	if exitCode(err) != exitRowErrors {
		t.Fatalf("rerun err = %v", err)
	}
	if !strings.Contains(out, `"success": 0`) || !strings.Contains(out, core.MsgUserExists) {
		t.Errorf("rerun output = %s", out)
	}
}

func TestImportCmd_StdinDryRun(t *testing.T) {
	store := memory.New()
	a := testApp(t, store, nil)

	out, err := run(t, a, "email,full_name,role\nx@x.com,X,GUEST\n", "import", "--dry-run", "-")
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, "1 would be imported") {
		t.Errorf("output = %q", out)
	}
	if users, _ := store.ListUsers(context.Background(), core.UserFilters{}); len(users) != 0 {
		t.Errorf("dry run created %d users", len(users))
	}
}

func TestImportCmd_StrictFromConfig(t *testing.T) {
	csvText := "email,full_name,role,cpf_cnpj\nx@x.com,X,GUEST,529.982.247-24\n"

	tests := []struct {
		name string
		env  map[string]string
		args []string
		want int
	}{
		{"lenient default", nil, nil, exitOK},
		{"strict from env", map[string]string{"IMPORT_STRICT": "true"}, nil, exitRowErrors},
		{"flag overrides env", map[string]string{"IMPORT_STRICT": "true"}, []string{"--strict=false"}, exitOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testApp(t, memory.New(), tt.env)
			args := append([]string{"import", "--dry-run"}, tt.args...)
			_, err := run(t, a, csvText, append(args, "-")...)
			if got := exitCode(err); got != tt.want {
				t.Errorf("exit code = %d (err %v), want %d", got, err, tt.want)
			}
		})
	}
}

func TestImportCmd_InvalidInput(t *testing.T) {
	a := testApp(t, memory.New(), nil)

	_, err := run(t, a, "", "import", "-")
	if exitCode(err) != exitValidation {
		t.Fatalf("exit code = %d (err %v), want %d", exitCode(err), err, exitValidation)
	}
	if !strings.Contains(err.Error(), "IMP003") {
		t.Errorf("err = %v, want empty-file code", err)
	}

	_, err = run(t, a, "", "import", filepath.Join(t.TempDir(), "missing.csv"))
	if exitCode(err) != exitUsage {
		t.Errorf("missing file exit code = %d, want %d", exitCode(err), exitUsage)
	}
}

func TestExportAndTemplateCmd(t *testing.T) {
	store := memory.New()
	a := testApp(t, store, nil)
	if _, err := run(t, a, "email,full_name,role\nana@x.com,Ana,ADMIN\nbia@x.com,Bia,GUEST\n", "import", "-"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out, err := run(t, a, "", "export", "--role", "GUEST")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "bia@x.com") || strings.Contains(out, "ana@x.com") {
		t.Errorf("export = %q", out)
	}

	path := filepath.Join(t.TempDir(), "tpl.csv")
	if _, err := run(t, a, "", "template", "-o", path); err != nil {
		t.Fatalf("template: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "email,full_name,phone,role,department,team,position") {
		t.Errorf("template = %q", data)
	}

	if _, err := run(t, a, "", "export", "--status", "retired"); !errors.Is(err, core.ErrInvalidStatus) {
		t.Errorf("bad status err = %v, want ErrInvalidStatus", err)
	}
}

func TestValidateDocCmd(t *testing.T) {
	a := testApp(t, memory.New(), nil)

	out, err := run(t, a, "", "validate-doc", "52998224725", "11.222.333/0001-81")
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, "529.982.247-25") || !strings.Contains(out, "cnpj") {
		t.Errorf("output = %q", out)
	}

	_, err = run(t, a, "", "validate-doc", "52998224725", "123")
	if exitCode(err) != exitValidation {
		t.Errorf("exit code = %d, want %d", exitCode(err), exitValidation)
	}
}

func TestExpireInvitationsCmd(t *testing.T) {
	a := testApp(t, memory.New(), nil)

	out, err := run(t, a, "", "expire-invitations")
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if strings.TrimSpace(out) != "0 invitations expired" {
		t.Errorf("output = %q", out)
	}
}

func TestConfigErrorIsUsage(t *testing.T) {
	a := testApp(t, memory.New(), map[string]string{"LOG_LEVEL": "loud"})

	_, err := run(t, a, "", "export")
	if exitCode(err) != exitUsage {
		t.Errorf("exit code = %d (err %v), want %d", exitCode(err), err, exitUsage)
	}
}

func TestExitCode(t *testing.T) {
	if exitCode(nil) != exitOK {
		t.Error("nil should be exitOK")
	}
	if exitCode(errors.New("x")) != exitFailure {
		t.Error("plain error should be exitFailure")
	}
	if withCode(exitUsage, nil) != nil {
		t.Error("withCode(nil) should be nil")
	}
}
