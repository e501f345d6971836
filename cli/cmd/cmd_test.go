package cmd

import (
	"errors"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/webasset/addr"
	"github.com/pithecene-io/webasset/cli/config"
)

func TestParseHeaders(t *testing.T) {
	header, err := parseHeaders([]string{"X-Api-Key: secret", "X-Tag: a", "X-Tag: b"})
	if err != nil {
		t.Fatalf("parseHeaders: %v", err)
	}
	if header.Get("X-Api-Key") != "secret" {
		t.Errorf("X-Api-Key = %q", header.Get("X-Api-Key"))
	}
	got := header.Values("X-Tag")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("X-Tag values = %v, want [a b] in order", got)
	}
}

func TestParseHeaders_Invalid(t *testing.T) {
	if _, err := parseHeaders([]string{"no-colon-here"}); err == nil {
		t.Error("expected error for malformed header")
	}
	if _, err := parseHeaders([]string{": empty-name"}); err == nil {
		t.Error("expected error for empty header name")
	}
}

func TestParseQuery_PreservesOrder(t *testing.T) {
	params, err := parseQuery([]string{"token=abc", "region=eu", "empty="})
	if err != nil {
		t.Fatalf("parseQuery: %v", err)
	}
	want := []addr.QueryParam{
		{Key: "token", Value: "abc"},
		{Key: "region", Value: "eu"},
		{Key: "empty", Value: ""},
	}
	if len(params) != len(want) {
		t.Fatalf("len = %d, want %d", len(params), len(want))
	}
	for i := range want {
		if params[i] != want[i] {
			t.Errorf("params[%d] = %+v, want %+v", i, params[i], want[i])
		}
	}
}

func TestParseQuery_Invalid(t *testing.T) {
	if _, err := parseQuery([]string{"no-equals"}); err == nil {
		t.Error("expected error for malformed query parameter")
	}
	if _, err := parseQuery([]string{"=value"}); err == nil {
		t.Error("expected error for empty key")
	}
}

// emptyContext builds a cli context with no flags set.
func emptyContext(t *testing.T) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("notify", "", "")
	set.String("notify-url", "", "")
	set.String("notify-channel", "", "")
	if err := set.Parse(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestBuildNotifier_None(t *testing.T) {
	n, err := buildNotifier(&config.Config{}, emptyContext(t))
	if err != nil {
		t.Fatalf("buildNotifier: %v", err)
	}
	if n != nil {
		t.Error("expected nil notifier when none configured")
	}
}

func TestBuildNotifier_Unknown(t *testing.T) {
	cfg := &config.Config{Notify: config.NotifyConfig{Type: "carrier-pigeon"}}
	if _, err := buildNotifier(cfg, emptyContext(t)); err == nil {
		t.Error("expected error for unknown notifier type")
	}
}

func TestFetchCommand_EndToEnd(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sprites/hero.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte{1, 2, 3})
	}))
	defer ts.Close()

	host := strings.TrimPrefix(ts.URL, "http://")
	out := filepath.Join(t.TempDir(), "hero.png")

	app := &cli.App{
		Commands: []*cli.Command{FetchCommand()},
		// Keep cli.Exit errors as return values instead of exiting the
		// test process.
		ExitErrHandler: func(*cli.Context, error) {},
	}
	err := app.Run([]string{
		"webasset", "fetch",
		"--scheme", "http",
		"--no-cache",
		"-o", out,
		host + "/sprites/hero.png",
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(data) != 3 || data[0] != 1 {
		t.Errorf("data = %v, want [1 2 3]", data)
	}
}

func TestFetchCommand_NotFoundExitCode(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	host := strings.TrimPrefix(ts.URL, "http://")

	app := &cli.App{
		Commands: []*cli.Command{FetchCommand()},
		// Keep cli.Exit errors as return values instead of exiting the
		// test process.
		ExitErrHandler: func(*cli.Context, error) {},
	}
	err := app.Run([]string{
		"webasset", "fetch",
		"--scheme", "http",
		"--no-cache",
		"-o", filepath.Join(t.TempDir(), "out"),
		host + "/missing.png",
	})
	if err == nil {
		t.Fatal("expected error for missing asset")
	}

	var exitCoder cli.ExitCoder
	if !errors.As(err, &exitCoder) {
		t.Fatalf("error should be cli.ExitCoder, got %v", err)
	}
	if exitCoder.ExitCode() != exitNotFound {
		t.Errorf("exit code = %d, want %d", exitCoder.ExitCode(), exitNotFound)
	}
}

func TestCacheCommand_PathAndClear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	var out strings.Builder
	app := &cli.App{
		Writer:   &out,
		Commands: []*cli.Command{CacheCommand()},
	}

	if err := app.Run([]string{"webasset", "cache", "path", "--cache-dir", dir}); err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if !strings.Contains(out.String(), dir) {
		t.Errorf("output %q missing cache dir %q", out.String(), dir)
	}

	if err := app.Run([]string{"webasset", "cache", "clear", "--cache-dir", dir}); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache root should still exist after clear: %v", err)
	}
}
