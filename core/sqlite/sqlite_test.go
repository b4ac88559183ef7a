package sqlite

import (
	"path/filepath"
	"testing"
)

func TestDriverInfo(t *testing.T) {
	info := GetInfo()
	if info.DriverName != "sqlite" && info.DriverName != "sqlite3" {
		t.Errorf("DriverName = %q, want sqlite or sqlite3", info.DriverName)
	}
	if info.DriverType != DriverType() {
		t.Errorf("DriverType mismatch: info=%s, func=%s", info.DriverType, DriverType())
	}
	if info.IsCGO != IsCGO() {
		t.Errorf("IsCGO mismatch: info=%v, func=%v", info.IsCGO, IsCGO())
	}
	if info.Package == "" {
		t.Error("Package should not be empty")
	}
}

func TestOpenAndReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO t (v) VALUES (?)`, "hello"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	db.Close()

	ro, err := OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly: %v", err)
	}
	defer ro.Close()
	var v string
	if err := ro.QueryRow(`SELECT v FROM t WHERE id = 1`).Scan(&v); err != nil {
		t.Fatalf("select: %v", err)
	}
	if v != "hello" {
		t.Errorf("v = %q, want hello", v)
	}
	if _, err := ro.Exec(`INSERT INTO t (v) VALUES ('x')`); err == nil {
		t.Error("write through a read-only handle should fail")
	}
}

func TestWithParam(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a.db", "file:a.db?mode=ro"},
		{"file:a.db", "file:a.db?mode=ro"},
		{"file:a.db?cache=shared", "file:a.db?cache=shared&mode=ro"},
	}
	for _, tt := range tests {
		if got := withParam(tt.in, "mode=ro"); got != tt.want {
			t.Errorf("withParam(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
