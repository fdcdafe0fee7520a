package symbols

import (
	"errors"
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"
)

const boardSrc = `package board

import "fmt"

type Pin uint8

const (
	PA22 Pin = 22
	PA23 Pin = 23

	PIN_SERIAL4_RX = PA23
	PIN_SERIAL4_TX = PA22
)

var (
	SERCOM3 = 3
	_       = fmt.Sprint
)

func Configure() {}

func (p Pin) High() {}
`

func TestDeclaredNames(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "board.go", boardSrc, 0)
	if err != nil {
		t.Fatal(err)
	}

	got := NewTable(declaredNames(file)...).Names()
	want := []string{"Configure", "PA22", "PA23", "PIN_SERIAL4_RX", "PIN_SERIAL4_TX", "Pin", "SERCOM3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}
}

func TestTable(t *testing.T) {
	table := NewTable("SERCOM3", "PIN_SERIAL4_RX")
	table.Add("PIN_SERIAL4_TX")

	for _, name := range []string{"SERCOM3", "PIN_SERIAL4_RX", "PIN_SERIAL4_TX"} {
		if !table.Resolve(name) {
			t.Errorf("%s should resolve", name)
		}
	}
	if table.Resolve("High") {
		t.Error("High should not resolve")
	}
}

func TestLoad(t *testing.T) {
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not available")
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/board\n\ngo 1.21\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "board.go"), []byte(boardSrc), 0o644); err != nil {
		t.Fatal(err)
	}
	tagged := "//go:build samd51\n\npackage board\n\nconst PIN_SERIAL5_RX = PA22\n"
	if err := os.WriteFile(filepath.Join(dir, "board_samd51.go"), []byte(tagged), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := Load(LoadOptions{Dir: dir, Pattern: "."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !table.Resolve("PIN_SERIAL4_RX") || table.Resolve("PIN_SERIAL5_RX") {
		t.Errorf("untagged load resolved %v", table.Names())
	}

	table, err = Load(LoadOptions{Dir: dir, Pattern: ".", Tags: []string{"samd51"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !table.Resolve("PIN_SERIAL5_RX") {
		t.Errorf("tagged load resolved %v", table.Names())
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not available")
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/board\n\ngo 1.21\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(LoadOptions{Dir: dir, Pattern: "./nothing"}); !errors.Is(err, ErrLoadFailed) {
		t.Errorf("expected ErrLoadFailed, got %v", err)
	}
}
