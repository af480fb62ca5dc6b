// Package listing is the in-memory catalog of advertised and installed
// contributions, and the filtering the manager dialogs run against it.
package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/sandeepkv93/contribd/internal/logging"
	"github.com/sandeepkv93/contribd/internal/manifest"
	"github.com/sandeepkv93/contribd/internal/model"
)

// Cache persists the last successfully downloaded listing document.
type Cache interface {
	SaveListingCache(ctx context.Context, body []byte, fetchedAt time.Time) error
	LoadListingCache(ctx context.Context) ([]byte, time.Time, error)
}

// Entry pairs the advertised and installed sides of one contribution.
type Entry struct {
	Advertised *model.Contribution
	Installed  *model.Contribution
}

// Contribution returns the metadata to display: advertised when known,
// installed otherwise.
func (e Entry) Contribution() model.Contribution {
	if e.Advertised != nil {
		c := *e.Advertised
		if e.Installed != nil {
			c.Folder = e.Installed.Folder
		}
		return c
	}
	if e.Installed != nil {
		return *e.Installed
	}
	return model.Contribution{}
}

func (e Entry) IsInstalled() bool { return e.Installed != nil }

func (e Entry) HasUpdate() bool {
	return e.Installed != nil && e.Advertised != nil && e.Advertised.Version > e.Installed.Version
}

type EventKind string

const (
	EventAdded   EventKind = "added"
	EventRemoved EventKind = "removed"
	EventChanged EventKind = "changed"
)

type Event struct {
	Kind  EventKind
	Entry Entry
}

type Listing struct {
	mu         sync.RWMutex
	entries    map[string]Entry
	downloaded bool
	skipped    int
	fetchedAt  time.Time

	downloader *Downloader
	cache      Cache
	logger     *slog.Logger

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

type Option func(*Listing)

func WithCache(c Cache) Option {
	return func(l *Listing) { l.cache = c }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Listing) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func New(fetcher Fetcher, opts ...Option) *Listing {
	l := &Listing{
		entries:    make(map[string]Entry),
		downloader: NewDownloader(fetcher),
		logger:     logging.Discard(),
		subs:       make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadCache seeds the advertised side from the last cached document. It
// does not count as a downloaded latest list.
func (l *Listing) LoadCache(ctx context.Context) error {
	if l.cache == nil {
		return nil
	}
	body, fetchedAt, err := l.cache.LoadListingCache(ctx)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	cs, skipped, err := manifest.ParseListing(body)
	if err != nil {
		return fmt.Errorf("listing: cached document: %w", err)
	}
	l.SetAdvertised(cs)
	l.mu.Lock()
	l.skipped = skipped
	l.fetchedAt = fetchedAt
	l.mu.Unlock()
	l.logger.Info("listing cache loaded", "contributions", len(cs), "fetched_at", fetchedAt)
	return nil
}

// DownloadAvailableList fetches the listing in the background. It returns
// false without calling done when a download is already in flight. done runs
// on the download goroutine after the listing has been updated and the
// downloader is idle again, so done may start another download; a non-nil
// error means the download failed and the previous state was kept.
func (l *Listing) DownloadAvailableList(ctx context.Context, done func(error)) bool {
	return l.downloader.Start(ctx, func(res Result) error {
		return l.applyDownload(ctx, res)
	}, done)
}

func (l *Listing) applyDownload(ctx context.Context, res Result) error {
	if res.Err != nil {
		l.logger.Warn("listing download failed", "err", res.Err, "elapsed", res.FinishedAt.Sub(res.StartedAt))
		return res.Err
	}
	cs, skipped, err := manifest.ParseListing(res.Body)
	if err != nil {
		l.logger.Warn("listing document rejected", "err", err)
		return err
	}
	l.SetAdvertised(cs)
	l.mu.Lock()
	l.downloaded = true
	l.skipped = skipped
	l.fetchedAt = res.FinishedAt
	l.mu.Unlock()
	l.logger.Info("listing downloaded", "contributions", len(cs), "skipped", skipped)

	if l.cache != nil {
		if err := l.cache.SaveListingCache(context.WithoutCancel(ctx), res.Body, res.FinishedAt); err != nil {
			l.logger.Warn("listing cache save failed", "err", err)
		}
	}
	return nil
}

func (l *Listing) Downloading() bool {
	return l.downloader.Busy()
}

func (l *Listing) HasDownloadedLatestList() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.downloaded
}

func (l *Listing) FetchedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fetchedAt
}

// Skipped is the number of invalid entries dropped from the last document.
func (l *Listing) Skipped() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.skipped
}

func (l *Listing) Close() {
	l.downloader.Stop()
}

// SetAdvertised replaces the advertised side of the catalog.
func (l *Listing) SetAdvertised(cs []model.Contribution) {
	l.mu.Lock()
	seen := make(map[string]bool, len(cs))
	events := make([]Event, 0)
	for i := range cs {
		c := cs[i]
		key := c.Key()
		seen[key] = true
		entry, ok := l.entries[key]
		entry.Advertised = &c
		l.entries[key] = entry
		if ok {
			events = append(events, Event{Kind: EventChanged, Entry: entry})
		} else {
			events = append(events, Event{Kind: EventAdded, Entry: entry})
		}
	}
	for key, entry := range l.entries {
		if seen[key] || entry.Advertised == nil {
			continue
		}
		entry.Advertised = nil
		events = append(events, l.storeLocked(key, entry))
	}
	l.mu.Unlock()
	l.publish(events)
}

// UpdateInstalledList replaces the installed side of the catalog with the
// editor's current snapshot.
func (l *Listing) UpdateInstalledList(installed []model.Contribution) {
	l.mu.Lock()
	seen := make(map[string]bool, len(installed))
	events := make([]Event, 0)
	for i := range installed {
		c := installed[i]
		key := c.Key()
		seen[key] = true
		entry, ok := l.entries[key]
		if ok && entry.Installed != nil && sameInstall(*entry.Installed, c) {
			continue
		}
		entry.Installed = &c
		l.entries[key] = entry
		if ok {
			events = append(events, Event{Kind: EventChanged, Entry: entry})
		} else {
			events = append(events, Event{Kind: EventAdded, Entry: entry})
		}
	}
	for key, entry := range l.entries {
		if seen[key] || entry.Installed == nil {
			continue
		}
		entry.Installed = nil
		events = append(events, l.storeLocked(key, entry))
	}
	l.mu.Unlock()
	l.publish(events)
}

func sameInstall(a, b model.Contribution) bool {
	return a.Version == b.Version && a.Folder == b.Folder && a.PrettyVersion == b.PrettyVersion
}

// storeLocked saves an entry that lost one side, dropping it when empty.
func (l *Listing) storeLocked(key string, entry Entry) Event {
	if entry.Advertised == nil && entry.Installed == nil {
		old := l.entries[key]
		delete(l.entries, key)
		return Event{Kind: EventRemoved, Entry: old}
	}
	l.entries[key] = entry
	return Event{Kind: EventChanged, Entry: entry}
}

// Categories returns the sorted categories of entries accepted by f.
func (l *Listing) Categories(f model.Filter) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	set := make(map[string]string)
	for _, entry := range l.entries {
		if !f.Accepts(entry.Installed, entry.Advertised) {
			continue
		}
		for _, c := range entry.Contribution().Categories {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			// spellings differing only in case collapse to the smallest one
			if have, ok := set[strings.ToLower(c)]; !ok || c < have {
				set[strings.ToLower(c)] = c
			}
		}
	}
	out := make([]string, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// FilteredList returns entries accepted by f, in category (empty means any),
// matching every token. Sorted by name.
func (l *Listing) FilteredList(f model.Filter, category string, tokens []string) []Entry {
	l.mu.RLock()
	out := make([]Entry, 0, len(l.entries))
	for _, entry := range l.entries {
		if !f.Accepts(entry.Installed, entry.Advertised) {
			continue
		}
		if category != "" && !entry.Contribution().HasCategory(category) {
			continue
		}
		if !matchesAll(entry, tokens) {
			continue
		}
		out = append(out, entry)
	}
	l.mu.RUnlock()
	sortEntries(out)
	return out
}

func (l *Listing) All() []Entry {
	l.mu.RLock()
	out := make([]Entry, 0, len(l.entries))
	for _, entry := range l.entries {
		out = append(out, entry)
	}
	l.mu.RUnlock()
	sortEntries(out)
	return out
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Contribution(), entries[j].Contribution()
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if an != bn {
			return an < bn
		}
		return a.Type < b.Type
	})
}

func (l *Listing) HasUpdates() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, entry := range l.entries {
		if entry.HasUpdate() {
			return true
		}
	}
	return false
}

func (l *Listing) UpdateCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, entry := range l.entries {
		if entry.HasUpdate() {
			n++
		}
	}
	return n
}

var ErrUnknownContribution = errors.New("listing: unknown contribution")

// Find looks a contribution up by name, ignoring case and type.
func (l *Listing) Find(name string) (Entry, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, entry := range l.All() {
		if strings.ToLower(entry.Contribution().Name) == want {
			return entry, nil
		}
	}
	if suggestion, ok := l.Suggest(name); ok {
		return Entry{}, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownContribution, name, suggestion)
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrUnknownContribution, name)
}

// Suggest returns the catalog name closest to name by edit distance, if it
// is close enough to be a plausible typo.
func (l *Listing) Suggest(name string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return "", false
	}
	best := ""
	bestDist := -1
	for _, entry := range l.All() {
		candidate := entry.Contribution().Name
		d := levenshtein.ComputeDistance(want, strings.ToLower(candidate))
		if bestDist < 0 || d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if bestDist < 0 || bestDist > len(want)/2+1 {
		return "", false
	}
	return best, true
}

// Subscribe registers fn for catalog changes. fn runs on the goroutine that
// made the change.
func (l *Listing) Subscribe(fn func(Event)) (cancel func()) {
	l.subMu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	l.subMu.Unlock()
	return func() {
		l.subMu.Lock()
		delete(l.subs, id)
		l.subMu.Unlock()
	}
}

func (l *Listing) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	l.subMu.Lock()
	subs := make([]func(Event), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.subMu.Unlock()
	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}
