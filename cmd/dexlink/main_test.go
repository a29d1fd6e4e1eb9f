package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhamidi/dexlink/dex"
)

// emptyClass is a class file for class A with no members and a pool of two
// entries.
var emptyClass = []byte{
	0xCA, 0xFE, 0xBA, 0xBE, 0, 0, 0, 52,
	0, 3,
	1, 0, 1, 'A',
	7, 0, 1,
	0, 0x21, 0, 2, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
}

// indyClass returns a class demo/Indy whose pool holds one invokedynamic
// entry bootstrapped by its own static bsm with the arguments "hello" and 42.
func indyClass() []byte {
	var pool bytes.Buffer
	w := func(b *bytes.Buffer, vs ...any) {
		for _, v := range vs {
			binary.Write(b, binary.BigEndian, v)
		}
	}
	utf8 := func(s string) { w(&pool, uint8(1), uint16(len(s)), []byte(s)) }
	bsmDesc := "(Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/invoke/MethodType;)Ljava/lang/invoke/CallSite;"

	utf8("demo/Indy")                           // 1
	w(&pool, uint8(7), uint16(1))               // 2 Class
	utf8("java/lang/Object")                    // 3
	w(&pool, uint8(7), uint16(3))               // 4 Class
	utf8("bsm")                                 // 5
	utf8(bsmDesc)                               // 6
	w(&pool, uint8(12), uint16(5), uint16(6))   // 7 NameAndType
	w(&pool, uint8(10), uint16(2), uint16(7))   // 8 Methodref
	w(&pool, uint8(15), uint8(6), uint16(8))    // 9 MethodHandle invokeStatic
	utf8("hello")                               // 10
	w(&pool, uint8(8), uint16(10))              // 11 String
	w(&pool, uint8(3), int32(42))               // 12 Integer
	utf8("run")                                 // 13
	utf8("()Ljava/lang/Runnable;")              // 14
	w(&pool, uint8(12), uint16(13), uint16(14)) // 15 NameAndType
	w(&pool, uint8(18), uint16(0), uint16(15))  // 16 InvokeDynamic
	utf8("BootstrapMethods")                    // 17

	var b bytes.Buffer
	w(&b, uint32(0xCAFEBABE), uint16(0), uint16(52), uint16(18))
	b.Write(pool.Bytes())
	w(&b, uint16(0x21), uint16(2), uint16(4))
	w(&b, uint16(0), uint16(0), uint16(0)) // interfaces, fields, methods
	w(&b, uint16(1), uint16(17), uint32(10))
	w(&b, uint16(1), uint16(9), uint16(2), uint16(11), uint16(12))
	return b.Bytes()
}

func writeClass(t *testing.T, path string) {
	t.Helper()
	writeClassBytes(t, path, emptyClass)
}

func writeClassBytes(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	writeClass(t, filepath.Join(dir, "b", "B.class"))
	writeClass(t, filepath.Join(dir, "A.class"))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	paths, err := collectInputs([]string{dir})
	if err != nil {
		t.Fatalf("collectInputs: %v", err)
	}
	want := []string{filepath.Join(dir, "A.class"), filepath.Join(dir, "b", "B.class")}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}

	if _, err := collectInputs([]string{t.TempDir()}); err == nil {
		t.Error("expected error for a directory without class files")
	}
}

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	writeClass(t, filepath.Join(dir, "A.class"))
	out := filepath.Join(dir, "out.dex")

	stdout, err := run(t, "-C", dir, "build", "-o", out, "--annotate", dir)
	if err != nil {
		t.Fatalf("build: %v\n%s", err, stdout)
	}
	if !strings.Contains(stdout, "wrote") {
		t.Errorf("unexpected output %q", stdout)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("dex\n039\x00")) {
		t.Errorf("output does not start with the dex magic: %x", data)
	}
	if _, err := os.Stat(out + ".txt"); err != nil {
		t.Errorf("expected annotated listing: %v", err)
	}
}

func TestLayoutCommand(t *testing.T) {
	dir := t.TempDir()
	writeClass(t, filepath.Join(dir, "A.class"))

	stdout, err := run(t, "-C", dir, "layout", dir)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if !strings.Contains(stdout, "file size") {
		t.Errorf("layout output lacks file size:\n%s", stdout)
	}

	if _, err := run(t, "-C", dir, "layout", "--format", "json", dir); err == nil {
		t.Error("expected error for unknown layout format")
	}
}

func TestInvokeDynamicClass(t *testing.T) {
	dir := t.TempDir()
	writeClassBytes(t, filepath.Join(dir, "demo", "Indy.class"), indyClass())
	out := filepath.Join(dir, "indy.dex")

	if stdout, err := run(t, "-C", dir, "build", "-o", out, "--annotate", dir); err != nil {
		t.Fatalf("build: %v\n%s", err, stdout)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) <= 16 {
		t.Errorf("expected sections after the header, got %d bytes", len(data))
	}
	listing, err := os.ReadFile(out + ".txt")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"bsmArgs_list", `string: `, "int: 42"} {
		if !strings.Contains(string(listing), want) {
			t.Errorf("listing lacks %q:\n%s", want, listing)
		}
	}

	stdout, err := run(t, "-C", dir, "layout", dir)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	for _, want := range []string{"call_site_ids", "method_handle_ids", "bsm_args", "14 bytes"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("layout output lacks %q:\n%s", want, stdout)
		}
	}
}

func TestWriteListing(t *testing.T) {
	dir := t.TempDir()
	writeClass(t, filepath.Join(dir, "A.class"))
	f, err := assemble([]string{dir}, dex.WithAnnotations(79))
	if err != nil {
		t.Fatal(err)
	}

	if err := writeListing(f, filepath.Join(dir, "missing", "out.txt")); err == nil {
		t.Error("expected error for a listing in a missing directory")
	}
	path := filepath.Join(dir, "out.txt")
	if err := writeListing(f, path); err != nil {
		t.Fatalf("writeListing: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("listing not written: %v", err)
	}
}
