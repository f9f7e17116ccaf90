package testutil

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/mangaq/internal/queryir"
)

// ErrUnknownName is returned by Lookups for names it has no entry for.
var ErrUnknownName = fmt.Errorf("unknown name")

// TagEntry is one tag known to Lookups.
type TagEntry struct {
	ID   string
	Name string
	Sex  queryir.TagSex
}

// Call records one lookup in the order it started.
type Call struct {
	Seq    int64
	Method string
	Arg    string
}

// Lookups is an in-memory identifier directory for resolver and compiler
// tests. Names match case-insensitively; tags match by substring.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Lookups struct {
	Users map[string]string
	Kinds map[string]string
	Tags  []TagEntry

	// Block, when non-nil, makes every lookup whose argument is a key wait
	// until the channel is closed or ctx is done.
	Block map[string]chan struct{}

	mu    sync.Mutex
	seq   int64
	calls []Call
}

// NewLookups returns a directory pre-populated with a few users, kinds and
// tags, enough for most tests.
func NewLookups() *Lookups {
	return &Lookups{
		Users: map[string]string{
			"oda":       "user:oda",
			"toriyama":  "user:toriyama",
			"archivist": "user:archivist",
		},
		Kinds: map[string]string{
			"manga":  "kind:manga",
			"manhwa": "kind:manhwa",
		},
		Tags: []TagEntry{
			{ID: "tag:romance", Name: "romance", Sex: queryir.TagSexUnisex},
			{ID: "tag:romcom", Name: "romantic comedy", Sex: queryir.TagSexUnisex},
			{ID: "tag:glasses-f", Name: "glasses", Sex: queryir.TagSexFemale},
			{ID: "tag:glasses-m", Name: "glasses", Sex: queryir.TagSexMale},
		},
	}
}

func (l *Lookups) record(method, arg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	l.calls = append(l.calls, Call{Seq: l.seq, Method: method, Arg: arg})
}

// Calls returns a copy of the recorded calls.
func (l *Lookups) Calls() []Call {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.calls)
}

// CallCount returns how many lookups have started.
func (l *Lookups) CallCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

// Reset clears recorded calls.
func (l *Lookups) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq = 0
	l.calls = nil
}

func (l *Lookups) wait(ctx context.Context, arg string) error {
	ch, ok := l.Block[arg]
	if !ok {
		return ctx.Err()
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Lookups) ResolveUserID(ctx context.Context, name string) (string, error) {
	l.record("user", name)
	if err := l.wait(ctx, name); err != nil {
		return "", err
	}
	if id, ok := lookupFold(l.Users, name); ok {
		return id, nil
	}
	return "", fmt.Errorf("user %q: %w", name, ErrUnknownName)
}

func (l *Lookups) ResolveKindID(ctx context.Context, name string) (string, error) {
	l.record("kind", name)
	if err := l.wait(ctx, name); err != nil {
		return "", err
	}
	if id, ok := lookupFold(l.Kinds, name); ok {
		return id, nil
	}
	return "", fmt.Errorf("kind %q: %w", name, ErrUnknownName)
}

func (l *Lookups) ResolveTagIDs(ctx context.Context, sex *queryir.TagSex, text string) ([]string, error) {
	l.record("tag", text)
	if err := l.wait(ctx, text); err != nil {
		return nil, err
	}
	needle := strings.ToLower(text)
	var ids []string
	for _, tag := range l.Tags {
		if sex != nil && tag.Sex != *sex {
			continue
		}
		if strings.Contains(strings.ToLower(tag.Name), needle) {
			ids = append(ids, tag.ID)
		}
	}
	return ids, nil
}

func lookupFold(m map[string]string, name string) (string, bool) {
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
