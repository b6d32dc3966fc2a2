package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type profileRecord struct {
	ID    string `json:"id"`
	Score uint32 `json:"score"`
}

func storeContract(t *testing.T, name string, open func(t *testing.T) Store) {
	t.Helper()
	ctx := context.Background()

	Convey("Given a "+name, t, func() {
		s := open(t)
		Reset(func() { _ = s.Close() })
		key := Key{Kind: KindProfile, ID: "alice"}

		Convey("When a missing key is read", func() {
			_, err := s.Get(ctx, key)
			ok, hasErr := s.Has(ctx, key)

			Convey("Then ErrNotFound is returned and Has is false", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(hasErr, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When a value is set", func() {
			So(s.Set(ctx, key, []byte(`{"v":1}`)), ShouldBeNil)

			Convey("Then it can be read back", func() {
				v, err := s.Get(ctx, key)
				So(err, ShouldBeNil)
				So(string(v), ShouldEqual, `{"v":1}`)
				ok, err := s.Has(ctx, key)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
			})

			Convey("Then a second set replaces it", func() {
				So(s.Set(ctx, key, []byte(`{"v":2}`)), ShouldBeNil)
				v, err := s.Get(ctx, key)
				So(err, ShouldBeNil)
				So(string(v), ShouldEqual, `{"v":2}`)
			})

			Convey("Then kinds are isolated", func() {
				_, err := s.Get(ctx, Key{Kind: KindLeaderboard, ID: "alice"})
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)

				n, err := s.Count(ctx, KindProfile)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
				n, err = s.Count(ctx, KindLeaderboard)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
			})
		})

		Convey("When an empty key is written", func() {
			err := s.Set(ctx, Key{Kind: KindProfile}, []byte("x"))

			Convey("Then it is rejected", func() {
				So(errors.Is(err, ErrEmptyKey), ShouldBeTrue)
			})
		})

		Convey("When JSON helpers round-trip a record", func() {
			in := profileRecord{ID: "bob", Score: 42}
			So(SetJSON(ctx, s, Key{Kind: KindProfile, ID: "bob"}, in), ShouldBeNil)

			var out profileRecord
			err := GetJSON(ctx, s, Key{Kind: KindProfile, ID: "bob"}, &out)

			Convey("Then the decoded value matches", func() {
				So(err, ShouldBeNil)
				So(out, ShouldResemble, in)
			})
		})

		Convey("When a record holds invalid JSON", func() {
			So(s.Set(ctx, key, []byte("{not json")), ShouldBeNil)
			var out profileRecord
			err := GetJSON(ctx, s, key, &out)

			Convey("Then ErrCorrupt is reported", func() {
				So(errors.Is(err, ErrCorrupt), ShouldBeTrue)
			})
		})

		Convey("When many goroutines write distinct keys", func() {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_ = s.Set(ctx, Key{Kind: KindCounter, ID: fmt.Sprintf("c%d", i)}, []byte("1"))
				}(i)
			}
			wg.Wait()

			Convey("Then every write lands", func() {
				n, err := s.Count(ctx, KindCounter)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 20)
			})
		})

		Convey("When the store is closed", func() {
			So(s.Close(), ShouldBeNil)

			Convey("Then further calls fail with ErrClosed", func() {
				_, err := s.Get(ctx, key)
				So(errors.Is(err, ErrClosed), ShouldBeTrue)
				So(errors.Is(s.Set(ctx, key, nil), ErrClosed), ShouldBeTrue)
				So(s.Close(), ShouldBeNil)
			})
		})
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, "memory store", func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	Convey("Given a value written to the memory store", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()
		buf := []byte("abc")
		key := Key{Kind: KindProfile, ID: "x"}
		So(s.Set(ctx, key, buf), ShouldBeNil)

		Convey("When the caller mutates its buffers", func() {
			buf[0] = 'z'
			got, _ := s.Get(ctx, key)
			got[1] = 'z'

			Convey("Then the stored value is unchanged", func() {
				again, err := s.Get(ctx, key)
				So(err, ShouldBeNil)
				So(string(again), ShouldEqual, "abc")
			})
		})
	})
}

func TestSQLiteStore(t *testing.T) {
	storeContract(t, "sqlite store", func(t *testing.T) Store {
		s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "repute.db"))
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		return s
	})
}

func TestSQLiteStore_Reopen(t *testing.T) {
	Convey("Given a sqlite file with one record", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "nested", "repute.db")
		s, err := OpenSQLite(ctx, path, WithBusyTimeout(0), WithMaxOpenConns(2))
		So(err, ShouldBeNil)
		So(s.Set(ctx, Key{Kind: KindCounter, ID: "achievement"}, []byte("6")), ShouldBeNil)
		So(s.Close(), ShouldBeNil)

		Convey("When it is reopened", func() {
			s2, err := OpenSQLite(ctx, path)
			So(err, ShouldBeNil)
			Reset(func() { _ = s2.Close() })

			Convey("Then the record survived", func() {
				v, err := s2.Get(ctx, Key{Kind: KindCounter, ID: "achievement"})
				So(err, ShouldBeNil)
				So(string(v), ShouldEqual, "6")
			})
		})
	})
}

func TestInstrument(t *testing.T) {
	Convey("Given an instrumented memory store", t, func() {
		ctx := context.Background()
		s := Instrument(NewMemoryStore())

		Convey("Then it forwards every call", func() {
			key := Key{Kind: KindAchievement, ID: "1"}
			So(s.Set(ctx, key, []byte("a")), ShouldBeNil)
			v, err := s.Get(ctx, key)
			So(err, ShouldBeNil)
			So(string(v), ShouldEqual, "a")
			ok, err := s.Has(ctx, key)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			n, err := s.Count(ctx, KindAchievement)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
			So(s.Close(), ShouldBeNil)
		})
	})
}
