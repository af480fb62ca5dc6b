package listing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/contribd/internal/model"
)

const testDocument = `
contributions:
  - type: library
    name: Video
    authors: [The Processing Foundation]
    sentence: Plays movies and captures cameras.
    categories: [Video & Vision]
    version: 12
  - type: library
    name: Minim
    authors: [Damien Di Fede]
    sentence: An audio library.
    categories: [Sound]
    version: 7
  - type: tool
    name: Color Selector
    categories: [Utilities]
    version: 2
  - type: mode
    name: Python Mode
    categories: [Language]
    version: 5
`

func advertised(t *testing.T) []model.Contribution {
	t.Helper()
	return []model.Contribution{
		{Type: model.TypeLibrary, Name: "Video", Authors: []string{"The Processing Foundation"}, Sentence: "Plays movies and captures cameras.", Categories: []string{"Video & Vision"}, Version: 12},
		{Type: model.TypeLibrary, Name: "Minim", Authors: []string{"Damien Di Fede"}, Sentence: "An audio library.", Categories: []string{"Sound"}, Version: 7},
		{Type: model.TypeTool, Name: "Color Selector", Categories: []string{"Utilities"}, Version: 2},
		{Type: model.TypeMode, Name: "Python Mode", Categories: []string{"Language"}, Version: 5},
	}
}

func names(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Contribution().Name)
	}
	return out
}

func TestFilteredListByTypeCategoryAndText(t *testing.T) {
	l := New(nil)
	l.SetAdvertised(advertised(t))
	libs := model.TypeFilter(model.TypeLibrary)

	got := names(l.FilteredList(libs, "", []string{""}))
	if strings.Join(got, ",") != "Minim,Video" {
		t.Fatalf("unexpected library list: %v", got)
	}

	got = names(l.FilteredList(libs, "Sound", nil))
	if strings.Join(got, ",") != "Minim" {
		t.Fatalf("unexpected category list: %v", got)
	}

	got = names(l.FilteredList(libs, "", []string{"movies", ""}))
	if strings.Join(got, ",") != "Video" {
		t.Fatalf("unexpected text filter list: %v", got)
	}

	got = names(l.FilteredList(libs, "", []string{"damien", "audio"}))
	if strings.Join(got, ",") != "Minim" {
		t.Fatalf("expected all tokens to be required, got %v", got)
	}

	if got := l.FilteredList(libs, "", []string{"nothing"}); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", names(got))
	}
}

func TestFilteredListProperties(t *testing.T) {
	l := New(nil)
	l.SetAdvertised(advertised(t))
	l.UpdateInstalledList([]model.Contribution{
		{Type: model.TypeLibrary, Name: "Video", Version: 11, Folder: "/sb/libraries/Video"},
		{Type: model.TypeLibrary, Name: "Minim", Version: 7, Folder: "/sb/libraries/Minim"},
	})
	libs := model.TypeFilter(model.TypeLibrary)

	cases := []struct {
		token string
		want  string
	}{
		{"is:installed", "Minim,Video"},
		{"not:installed", ""},
		{"has:updates", "Video"},
		{"is:upgradable", "Video"},
		{"not:update", "Minim"},
		{"is:lib", "Minim,Video"},
		{"is:tool", ""},
		{"is:", "Minim,Video"},
		{"is:installable", "Minim,Video"},
		{"has:whatever", "Minim,Video"},
	}
	for _, tc := range cases {
		got := strings.Join(names(l.FilteredList(libs, "", []string{tc.token})), ",")
		if got != tc.want {
			t.Fatalf("token %q: got %q, want %q", tc.token, got, tc.want)
		}
	}
}

func TestCategoriesFollowFilter(t *testing.T) {
	l := New(nil)
	l.SetAdvertised(advertised(t))

	got := l.Categories(model.TypeFilter(model.TypeLibrary))
	if strings.Join(got, ",") != "Sound,Video & Vision" {
		t.Fatalf("unexpected library categories: %v", got)
	}
	if got := l.Categories(model.UpdateFilter()); len(got) != 0 {
		t.Fatalf("expected no update categories, got %v", got)
	}
}

func TestCategoriesPickStableSpelling(t *testing.T) {
	l := New(nil)
	l.SetAdvertised([]model.Contribution{
		{Type: model.TypeLibrary, Name: "Minim", Categories: []string{"sound"}, Version: 1},
		{Type: model.TypeLibrary, Name: "Beads", Categories: []string{" Sound "}, Version: 1},
		{Type: model.TypeLibrary, Name: "Sonia", Categories: []string{"SOUND"}, Version: 1},
	})
	libs := model.TypeFilter(model.TypeLibrary)

	for i := 0; i < 10; i++ {
		got := l.Categories(libs)
		if strings.Join(got, ",") != "SOUND" {
			t.Fatalf("case variants should collapse to one stable spelling, got %v", got)
		}
	}
	got := names(l.FilteredList(libs, "SOUND", nil))
	if strings.Join(got, ",") != "Beads,Minim,Sonia" {
		t.Fatalf("every spelling should match the chosen category, got %v", got)
	}
}

func TestUpdateInstalledListMergesAndDrops(t *testing.T) {
	l := New(nil)
	l.SetAdvertised(advertised(t)[:1])
	local := model.Contribution{Type: model.TypeTool, Name: "Local Tool", Version: 1, Folder: "/sb/tools/Local Tool"}

	var mu sync.Mutex
	kinds := make([]EventKind, 0)
	cancel := l.Subscribe(func(ev Event) {
		mu.Lock()
		kinds = append(kinds, ev.Kind)
		mu.Unlock()
	})
	defer cancel()

	l.UpdateInstalledList([]model.Contribution{local})
	if len(l.All()) != 2 {
		t.Fatalf("expected installed-only entry to be added, got %v", names(l.All()))
	}
	l.UpdateInstalledList([]model.Contribution{local})
	l.UpdateInstalledList(nil)
	if len(l.All()) != 1 {
		t.Fatalf("expected installed-only entry to be dropped, got %v", names(l.All()))
	}

	mu.Lock()
	defer mu.Unlock()
	if len(kinds) != 2 || kinds[0] != EventAdded || kinds[1] != EventRemoved {
		t.Fatalf("unexpected events: %v", kinds)
	}
}

func TestHasUpdates(t *testing.T) {
	l := New(nil)
	l.SetAdvertised(advertised(t))
	if l.HasUpdates() {
		t.Fatal("nothing installed, expected no updates")
	}
	l.UpdateInstalledList([]model.Contribution{{Type: model.TypeMode, Name: "python mode", Version: 4}})
	if !l.HasUpdates() || l.UpdateCount() != 1 {
		t.Fatalf("expected one update, got %d", l.UpdateCount())
	}
	got := names(l.FilteredList(model.UpdateFilter(), "", nil))
	if strings.Join(got, ",") != "Python Mode" {
		t.Fatalf("unexpected update list: %v", got)
	}
}

func TestFindAndSuggest(t *testing.T) {
	l := New(nil)
	l.SetAdvertised(advertised(t))

	entry, err := l.Find("minim")
	if err != nil || entry.Contribution().Name != "Minim" {
		t.Fatalf("find minim: %+v %v", entry, err)
	}

	_, err = l.Find("Vidoe")
	if !errors.Is(err, ErrUnknownContribution) {
		t.Fatalf("expected ErrUnknownContribution, got %v", err)
	}
	if !strings.Contains(err.Error(), `did you mean "Video"`) {
		t.Fatalf("expected suggestion in error, got %v", err)
	}

	if _, ok := l.Suggest("zzzzzzzzzz"); ok {
		t.Fatal("expected no suggestion for distant name")
	}
}

type memoryCache struct {
	mu    sync.Mutex
	body  []byte
	at    time.Time
	saves int
}

func (c *memoryCache) SaveListingCache(_ context.Context, body []byte, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.body = append([]byte(nil), body...)
	c.at = at
	c.saves++
	return nil
}

func (c *memoryCache) LoadListingCache(context.Context) ([]byte, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.body, c.at, nil
}

func TestDownloadAvailableListSuccessCachesDocument(t *testing.T) {
	cache := &memoryCache{}
	l := New(FetcherFunc(func(context.Context) ([]byte, error) {
		return []byte(testDocument), nil
	}), WithCache(cache))
	defer l.Close()

	done := make(chan error, 1)
	if !l.DownloadAvailableList(t.Context(), func(err error) { done <- err }) {
		t.Fatal("expected download to start")
	}
	if err := waitDone(t, done); err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if !l.HasDownloadedLatestList() {
		t.Fatal("expected downloaded flag")
	}
	if len(l.All()) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(l.All()))
	}
	if cache.saves != 1 {
		t.Fatalf("expected one cache save, got %d", cache.saves)
	}

	fresh := New(nil, WithCache(cache))
	if err := fresh.LoadCache(t.Context()); err != nil {
		t.Fatalf("load cache: %v", err)
	}
	if len(fresh.All()) != 4 || fresh.HasDownloadedLatestList() {
		t.Fatalf("cache should seed entries without marking downloaded")
	}
}

func TestDownloadAvailableListFailureKeepsState(t *testing.T) {
	boom := errors.New("offline")
	l := New(FetcherFunc(func(context.Context) ([]byte, error) { return nil, boom }))
	defer l.Close()
	l.SetAdvertised(advertised(t))

	done := make(chan error, 1)
	l.DownloadAvailableList(t.Context(), func(err error) { done <- err })
	if err := waitDone(t, done); !errors.Is(err, boom) {
		t.Fatalf("expected offline error, got %v", err)
	}
	if l.HasDownloadedLatestList() {
		t.Fatal("failed download must not mark the list as downloaded")
	}
	if len(l.All()) != 4 {
		t.Fatalf("expected previous entries to survive, got %d", len(l.All()))
	}
}

func TestDownloadAvailableListSingleFlight(t *testing.T) {
	release := make(chan struct{})
	l := New(FetcherFunc(func(context.Context) ([]byte, error) {
		<-release
		return []byte(testDocument), nil
	}))
	defer l.Close()

	done := make(chan error, 2)
	if !l.DownloadAvailableList(t.Context(), func(err error) { done <- err }) {
		t.Fatal("expected first download to start")
	}
	if l.DownloadAvailableList(t.Context(), func(err error) { done <- err }) {
		t.Fatal("second download must not start while the first is running")
	}
	if !l.Downloading() {
		t.Fatal("expected downloading state")
	}
	close(release)
	if err := waitDone(t, done); err != nil {
		t.Fatalf("download failed: %v", err)
	}
	select {
	case <-done:
		t.Fatal("unexpected second completion")
	case <-time.After(50 * time.Millisecond):
	}
}

func waitDone(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for download")
		return nil
	}
}
