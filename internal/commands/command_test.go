package commands

import (
	"errors"
	"testing"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/install Video Export", TypeInstall},
		{"remove minim", TypeRemove},
		{"/update all", TypeUpdate},
		{"/category Sound", TypeCategory},
		{"/filter is:installed sound", TypeFilter},
		{"/refresh", TypeRefresh},
		{"/INSTALL Video", TypeInstall},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseArguments(t *testing.T) {
	cmd, err := Parse("/install   Video    Export ")
	if err != nil || cmd.Install.Name != "Video Export" {
		t.Fatalf("unexpected install args: %+v %v", cmd.Install, err)
	}

	cmd, err = Parse("/update ALL")
	if err != nil || !cmd.Update.All {
		t.Fatalf("expected update all: %+v %v", cmd.Update, err)
	}
	cmd, err = Parse("/update minim")
	if err != nil || cmd.Update.All || cmd.Update.Name != "minim" {
		t.Fatalf("unexpected update args: %+v %v", cmd.Update, err)
	}

	cmd, err = Parse("/category all")
	if err != nil || !cmd.Category.All {
		t.Fatalf("expected category all: %+v %v", cmd.Category, err)
	}

	cmd, err = Parse("/filter Hello World!")
	if err != nil || cmd.Filter.Text != "Hello World!" {
		t.Fatalf("filter text should be kept verbatim: %+v %v", cmd.Filter, err)
	}
	cmd, err = Parse("/filter")
	if err != nil || cmd.Filter.Text != "" {
		t.Fatalf("empty filter should clear: %+v %v", cmd.Filter, err)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		in   string
		code ErrorCode
	}{
		{"", ErrCodeEmptyInput},
		{"  / ", ErrCodeEmptyInput},
		{"/unknown do x", ErrCodeUnknownCommand},
		{"/install", ErrCodeInvalidArgument},
		{"/remove   ", ErrCodeInvalidArgument},
		{"/category", ErrCodeInvalidArgument},
		{"/refresh now", ErrCodeInvalidArgument},
	}
	for _, tc := range cases {
		_, err := Parse(tc.in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != tc.code {
			t.Fatalf("parse %q: expected %s, got %v", tc.in, tc.code, err)
		}
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/install Video Export")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Install: func(a TargetArgs) (Result, error) {
			called = true
			if a.Name != "Video Export" {
				t.Fatalf("unexpected name: %q", a.Name)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}

	refreshed := false
	cmd, _ = Parse("/refresh")
	if _, err := Execute(cmd, Handlers{Refresh: func() (Result, error) { refreshed = true; return Result{}, nil }}); err != nil || !refreshed {
		t.Fatalf("refresh dispatch failed: %v", err)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	for _, in := range []string{"/install x", "/remove x", "/update all", "/category x", "/filter x", "/refresh"} {
		cmd, err := Parse(in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", in, err)
		}
		_, err = Execute(cmd, Handlers{})
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
			t.Fatalf("%q: expected missing handler error, got %v", in, err)
		}
	}
}
