package repository

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/webwhiz/webwhiz/internal/domain"
)

func TestSessionStoreCreateDuplicate(t *testing.T) {
	t.Parallel()
	store := NewSessionStore(20)

	session, err := store.Create("s1", "https://example.com/article")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if session.Stage != domain.SessionStageUpload || session.State != domain.SessionStateReading {
		t.Errorf("new session has stage=%q state=%q", session.Stage, session.State)
	}

	_, err = store.Create("s1", "https://example.com/other")
	if !errors.Is(err, domain.ErrSessionExists) {
		t.Fatalf("second Create() error = %v, want ErrSessionExists", err)
	}

	// The first session's link must be untouched.
	got, ok := store.Get("s1")
	if !ok || got.Link != "https://example.com/article" {
		t.Errorf("duplicate create mutated session: %+v", got)
	}
}

func TestSessionStoreHistoryBound(t *testing.T) {
	t.Parallel()
	store := NewSessionStore(3)

	for i := 0; i < 10; i++ {
		store.AppendTurn("s1", domain.ChatTurn{
			Question: fmt.Sprintf("q%d", i),
			Answer:   fmt.Sprintf("a%d", i),
		})
	}

	turns := store.History("s1")
	if len(turns) != 3 {
		t.Fatalf("History() has %d turns, want 3", len(turns))
	}
	if turns[0].Question != "q7" || turns[2].Question != "q9" {
		t.Errorf("history did not keep the most recent turns: %+v", turns)
	}
}

func TestSessionStoreHistoryIsCopied(t *testing.T) {
	t.Parallel()
	store := NewSessionStore(20)
	store.AppendTurn("s1", domain.ChatTurn{Question: "q", Answer: "a"})

	turns := store.History("s1")
	turns[0].Answer = "mutated"

	if store.History("s1")[0].Answer != "a" {
		t.Error("History() exposed internal state to mutation")
	}
}

func TestSessionStoreCredentials(t *testing.T) {
	t.Parallel()
	store := NewSessionStore(20)

	_, err := store.Credentials("s1")
	if !errors.Is(err, domain.ErrCredentialsNotFound) {
		t.Fatalf("Credentials() error = %v, want ErrCredentialsNotFound", err)
	}

	want := domain.WikiCredentials{
		BaseURL:  "https://acme.atlassian.net/wiki",
		APIKey:   "key",
		Username: "dev@acme.com",
		PageID:   "42",
	}
	store.SetCredentials("s1", want)

	got, err := store.Credentials("s1")
	if err != nil {
		t.Fatalf("Credentials() error = %v", err)
	}
	if got != want {
		t.Errorf("Credentials() = %+v, want %+v", got, want)
	}
}

func TestSessionStorePurgeAll(t *testing.T) {
	t.Parallel()
	store := NewSessionStore(20)

	if _, err := store.Create("s1", "link"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	store.AppendTurn("s1", domain.ChatTurn{Question: "q", Answer: "a"})
	store.SetCredentials("s1", domain.WikiCredentials{PageID: "1"})

	store.PurgeAll("s1")

	if _, ok := store.Get("s1"); ok {
		t.Error("session metadata survived PurgeAll")
	}
	if len(store.History("s1")) != 0 {
		t.Error("history survived PurgeAll")
	}
	if _, err := store.Credentials("s1"); !errors.Is(err, domain.ErrCredentialsNotFound) {
		t.Error("credentials survived PurgeAll")
	}

	// The id is reusable after a full purge.
	if _, err := store.Create("s1", "link"); err != nil {
		t.Errorf("Create() after PurgeAll error = %v", err)
	}
}

func TestSessionStoreConcurrentAppends(t *testing.T) {
	t.Parallel()
	store := NewSessionStore(1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.AppendTurn("s1", domain.ChatTurn{Question: fmt.Sprintf("q%d", i)})
			store.History("s1")
		}(i)
	}
	wg.Wait()

	if got := len(store.History("s1")); got != 50 {
		t.Errorf("History() has %d turns after concurrent appends, want 50", got)
	}
}
