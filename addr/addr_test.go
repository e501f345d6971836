package addr

import "testing"

func TestMakeURI_HTTP(t *testing.T) {
	b := &Builder{Scheme: SchemeHTTP}
	got := b.MakeURI("s3.example.org/dump/favicon.png")
	want := "http://s3.example.org/dump/favicon.png"
	if got != want {
		t.Errorf("MakeURI = %q, want %q", got, want)
	}
}

func TestMakeURI_HTTPS(t *testing.T) {
	b := &Builder{Scheme: SchemeHTTPS}
	got := b.MakeURI("s3.example.org/dump/favicon.png")
	want := "https://s3.example.org/dump/favicon.png"
	if got != want {
		t.Errorf("MakeURI = %q, want %q", got, want)
	}
}

func TestMakeURI_PathPassesThroughVerbatim(t *testing.T) {
	// No normalization: dot segments and repeated slashes are the
	// caller's problem, not ours.
	b := &Builder{Scheme: SchemeHTTPS}
	got := b.MakeURI("host/a/../b//c.png")
	want := "https://host/a/../b//c.png"
	if got != want {
		t.Errorf("MakeURI = %q, want %q", got, want)
	}
}

func TestMakeURI_StripsFakeExtension(t *testing.T) {
	b := &Builder{Scheme: SchemeHTTPS, StripFakeExtensions: true}

	got := b.MakeURI("a/b/name..png")
	if want := "https://a/b/name"; got != want {
		t.Errorf("fake extension: got %q, want %q", got, want)
	}

	// Single dot is a real extension and must survive.
	got = b.MakeURI("a/b/name.png")
	if want := "https://a/b/name.png"; got != want {
		t.Errorf("real extension: got %q, want %q", got, want)
	}

	// Double dot not adjacent to the final extension is not fake.
	got = b.MakeURI("a/b/na..me.png")
	if want := "https://a/b/na..me.png"; got != want {
		t.Errorf("interior double dot: got %q, want %q", got, want)
	}
}

func TestMakeURI_NoStripWhenDisabled(t *testing.T) {
	b := &Builder{Scheme: SchemeHTTP}
	got := b.MakeURI("a/b/name..png")
	if want := "http://a/b/name..png"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMakeMetaURI(t *testing.T) {
	b := &Builder{Scheme: SchemeHTTPS}
	got, ok := b.MakeMetaURI("a/b/name.png")
	if !ok {
		t.Fatal("expected meta URI for extensioned path")
	}
	if want := "https://a/b/name.png.meta"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMakeMetaURI_NoExtension(t *testing.T) {
	b := &Builder{Scheme: SchemeHTTPS}
	if _, ok := b.MakeMetaURI("a/b/name"); ok {
		t.Error("expected no meta URI for extensionless path")
	}
	if _, ok := b.MakeMetaURI("plainfile"); ok {
		t.Error("expected no meta URI for extensionless single segment")
	}
}

func TestMakeURI_QueryInsertionOrder(t *testing.T) {
	b := &Builder{
		Scheme: SchemeHTTP,
		Query: []QueryParam{
			{Key: "token", Value: "abc"},
			{Key: "version", Value: "2"},
			{Key: "a", Value: "1"},
		},
	}

	want := "http://host/x.png?token=abc&version=2&a=1"
	for range 5 {
		if got := b.MakeURI("host/x.png"); got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}

func TestMakeMetaURI_QueryAfterMetaSuffix(t *testing.T) {
	b := &Builder{
		Scheme: SchemeHTTPS,
		Query:  []QueryParam{{Key: "k", Value: "v"}},
	}
	got, ok := b.MakeMetaURI("host/x.png")
	if !ok {
		t.Fatal("expected meta URI")
	}
	if want := "https://host/x.png.meta?k=v"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
