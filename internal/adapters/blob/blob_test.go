package blob_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Qwealzy/roots-of-sentient/internal/adapters/blob"
	. "github.com/smartystreets/goconvey/convey"
)

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}

func TestMemStore(t *testing.T) {
	Convey("Given an in-memory blob store", t, func() {
		ctx := context.Background()
		store := blob.NewMemStore()

		Convey("When uploading a blob", func() {
			err := store.Upload(ctx, "avatars/a.png", strings.NewReader("image-bytes"), "image/png")
			So(err, ShouldBeNil)

			Convey("Then its URL resolves", func() {
				url, err := store.URL(ctx, "avatars/a.png")
				So(err, ShouldBeNil)
				So(url, ShouldEqual, "memory://avatars/a.png")
			})

			Convey("Then its content is readable back", func() {
				r, ok := store.Open("avatars/a.png")
				So(ok, ShouldBeTrue)
				b, _ := io.ReadAll(r)
				So(string(b), ShouldEqual, "image-bytes")
			})

			Convey("When the blob is deleted", func() {
				So(store.Delete(ctx, "avatars/a.png"), ShouldBeNil)
				_, err := store.URL(ctx, "avatars/a.png")
				So(err, ShouldEqual, blob.ErrNotFound)
			})
		})

		Convey("When resolving an unknown key", func() {
			_, err := store.URL(ctx, "avatars/missing.png")
			So(err, ShouldEqual, blob.ErrNotFound)
		})
	})
}

func TestFSStore(t *testing.T) {
	Convey("Given a filesystem blob store", t, func() {
		ctx := context.Background()
		root := t.TempDir()
		store, err := blob.NewFSStore(root, "/avatars")
		So(err, ShouldBeNil)

		Convey("When uploading a blob", func() {
			err := store.Upload(ctx, "avatars/a.png", strings.NewReader("image-bytes"), "image/png")
			So(err, ShouldBeNil)

			Convey("Then the file exists under the root", func() {
				b, err := readFile(filepath.Join(root, "avatars", "a.png"))
				So(err, ShouldBeNil)
				So(b, ShouldEqual, "image-bytes")
			})

			Convey("Then its URL joins the base URL and key", func() {
				url, err := store.URL(ctx, "avatars/a.png")
				So(err, ShouldBeNil)
				So(url, ShouldEqual, "/avatars/avatars/a.png")
			})

			Convey("When the blob is deleted", func() {
				So(store.Delete(ctx, "avatars/a.png"), ShouldBeNil)
				_, err := store.URL(ctx, "avatars/a.png")
				So(err, ShouldEqual, blob.ErrNotFound)
			})
		})

		Convey("When a key tries to escape the root", func() {
			err := store.Upload(ctx, "../outside.png", strings.NewReader("x"), "")
			So(err, ShouldBeNil)

			Convey("Then the path is confined to the root", func() {
				_, statErr := readFile(filepath.Join(filepath.Dir(root), "outside.png"))
				So(statErr, ShouldNotBeNil)
			})
		})

		Convey("When deleting an unknown key", func() {
			So(store.Delete(ctx, "avatars/missing.png"), ShouldBeNil)
		})
	})
}
