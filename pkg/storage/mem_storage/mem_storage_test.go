package mem_storage

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sanchis/localit/pkg/storage"
)

func Test_memStorage(t *testing.T) {
	s := NewMemStorage()
	defer s.Close()

	for i := 0; i < 128; i++ {
		k := fmt.Sprintf("key_%d", i)
		if err := s.SetItem(k, fmt.Sprintf("v%d", i)); err != nil {
			t.Fatal(err)
		}
	}
	if s.Len() != 128 {
		t.Fatalf("want 128 entries, got %d", s.Len())
	}

	v, ok, err := s.GetItem("key_5")
	if err != nil || !ok || v != "v5" {
		t.Fatalf("get mismatch: %q %v %v", v, ok, err)
	}
	if _, ok, _ := s.GetItem("nope"); ok {
		t.Fatal("absent key reported present")
	}

	if err := s.RemoveItem("key_5"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.GetItem("key_5"); ok {
		t.Fatal("removed key reported present")
	}
	if err := s.RemoveItem("nope"); err != nil {
		t.Fatal("removing an absent key should not fail")
	}

	keys, err := s.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 127 {
		t.Fatalf("want 127 keys, got %d", len(keys))
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 {
		t.Fatal("clear left entries behind")
	}
}

func Test_memStorage_closed(t *testing.T) {
	s := NewMemStorage()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.SetItem("k", "v"); !errors.Is(err, storage.ErrClosed) {
		t.Fatalf("want ErrClosed, got %v", err)
	}
	if _, _, err := s.GetItem("k"); !errors.Is(err, storage.ErrClosed) {
		t.Fatalf("want ErrClosed, got %v", err)
	}
}

func Test_memStorage_race(t *testing.T) {
	s := NewMemStorage()
	defer s.Close()

	wg := sync.WaitGroup{}
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 256; i++ {
				k := fmt.Sprintf("key_%d", i)
				_ = s.SetItem(k, "v")
				_, _, _ = s.GetItem(k)
				_, _ = s.Keys()
				_ = s.RemoveItem(k)
			}
		}()
	}
	wg.Wait()
}
