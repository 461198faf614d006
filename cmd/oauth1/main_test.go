package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseParams(t *testing.T) {
	vals, err := parseParams([]string{"a=1", "a=2", "flag", "x=y=z"})
	if err != nil {
		t.Fatalf("parseParams: %v", err)
	}
	if got := vals["a"]; len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("a = %v", got)
	}
	if got, ok := vals["flag"]; !ok || got[0] != "" {
		t.Fatalf("flag = %v", got)
	}
	if vals.Get("x") != "y=z" {
		t.Fatalf("x = %q", vals.Get("x"))
	}
	if _, err := parseParams([]string{"=v"}); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestBaseStringCmd(t *testing.T) {
	out := "text"
	cmd := baseStringCmd(&out)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--url", "HTTP://Example.com:80/r%20esource?id=123", "-p", "a=1", "-p", "b=2"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := "GET&http%3A%2F%2Fexample.com%2Fr%2520esource&a%3D1%26b%3D2"
	if got := strings.TrimSpace(buf.String()); got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestSignCmd_PlainTextFromStdin(t *testing.T) {
	out := "text"
	cmd := signCmd(&out)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetIn(strings.NewReader("ignored\n"))
	cmd.SetArgs([]string{"--method", "PLAINTEXT", "--consumer-secret", "a b", "--token-secret", "x!"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "a%20b&x%21" {
		t.Fatalf("signature = %q", got)
	}
}
