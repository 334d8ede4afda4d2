package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Qwealzy/roots-of-sentient/internal/adapters/blob"
	"github.com/Qwealzy/roots-of-sentient/internal/adapters/repository"
	service "github.com/Qwealzy/roots-of-sentient/internal/app"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/ring"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/word"
	"github.com/Qwealzy/roots-of-sentient/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	m.Run()
}

func startService(ctx context.Context, opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	_ = svc.Start(ctx)
	return svc
}

func contribution(term, name, token string) service.Contribution {
	return service.Contribution{Term: term, DisplayName: name, OwnerToken: token}
}

func TestContribute(t *testing.T) {
	Convey("Given a running service", t, func() {
		ctx := context.Background()
		svc := startService(ctx)
		defer svc.Stop()

		Convey("When the first word arrives", func() {
			v, err := svc.Contribute(ctx, contribution("root", "Robin", "tok-1"))

			Convey("Then it claims the first slot on layer 0", func() {
				So(err, ShouldBeNil)
				So(v.ID, ShouldNotBeEmpty)
				So(*v.LayerIndex, ShouldEqual, 0)
				So(*v.SlotIndex, ShouldEqual, 0)
			})

			Convey("Then the placement is derived from the coordinate", func() {
				So(err, ShouldBeNil)
				So(*v.Angle, ShouldEqual, 45)
				So(*v.Radius, ShouldEqual, 90)
			})
		})

		Convey("When five words arrive in sequence", func() {
			var last service.WordView
			for i, token := range []string{"t1", "t2", "t3", "t4", "t5"} {
				var err error
				last, err = svc.Contribute(ctx, contribution("word-"+token, "N", token))
				So(err, ShouldBeNil)
				if i < 4 {
					So(*last.LayerIndex, ShouldEqual, 0)
				}
			}

			Convey("Then the fifth overflows to layer 1", func() {
				So(*last.LayerIndex, ShouldEqual, 1)
				So(*last.SlotIndex, ShouldEqual, 0)
			})
		})

		Convey("When a duplicate term arrives with different casing", func() {
			_, err := svc.Contribute(ctx, contribution("Sapling", "A", "tok-1"))
			So(err, ShouldBeNil)

			_, err = svc.Contribute(ctx, contribution("sapling", "B", "tok-2"))
			So(err, ShouldEqual, service.ErrDuplicateTerm)
		})

		Convey("When the same visitor contributes twice", func() {
			_, err := svc.Contribute(ctx, contribution("first", "A", "tok-1"))
			So(err, ShouldBeNil)

			_, err = svc.Contribute(ctx, contribution("second", "A", "tok-1"))
			So(err, ShouldEqual, service.ErrVisitorHasWord)
		})

		Convey("When the input is invalid", func() {
			_, err := svc.Contribute(ctx, contribution("", "A", "tok-1"))
			var verr *word.ValidationError
			So(err, ShouldNotBeNil)
			So(errors.As(err, &verr), ShouldBeTrue)
		})
	})

	Convey("Given a service without the per-visitor constraint", t, func() {
		ctx := context.Background()
		svc := startService(ctx, service.WithSinglePerVisitor(false))
		defer svc.Stop()

		Convey("Then one token may contribute several words", func() {
			_, err := svc.Contribute(ctx, contribution("first", "A", "tok-1"))
			So(err, ShouldBeNil)
			_, err = svc.Contribute(ctx, contribution("second", "A", "tok-1"))
			So(err, ShouldBeNil)
		})
	})

	Convey("Given a service on a full bounded ring", t, func() {
		ctx := context.Background()
		svc := startService(ctx, service.WithPlan(ring.NewPlan(
			ring.WithBaseCapacity(1),
			ring.WithMaxLayer(0),
		)))
		defer svc.Stop()

		_, err := svc.Contribute(ctx, contribution("only", "A", "tok-1"))
		So(err, ShouldBeNil)

		Convey("Then the next contribution is rejected", func() {
			_, err := svc.Contribute(ctx, contribution("extra", "B", "tok-2"))
			So(err, ShouldEqual, ring.ErrRingFull)
		})
	})
}

func TestContributeAvatar(t *testing.T) {
	Convey("Given a running service with an inspectable blob store", t, func() {
		ctx := context.Background()
		blobs := blob.NewMemStore()
		svc := startService(ctx, service.WithBlobStore(blobs))
		defer svc.Stop()

		Convey("When a word arrives with an avatar", func() {
			in := contribution("root", "Robin", "tok-1")
			in.Avatar = strings.NewReader("image-bytes")
			in.AvatarSize = int64(len("image-bytes"))
			in.AvatarContentType = "image/png"
			in.AvatarFilename = "me.png"

			v, err := svc.Contribute(ctx, in)

			Convey("Then the blob is stored and its URL resolved", func() {
				So(err, ShouldBeNil)
				So(v.AvatarURL, ShouldStartWith, "memory://avatars/")
				So(v.AvatarURL, ShouldEndWith, ".png")
			})
		})

		Convey("When the avatar exceeds the size limit", func() {
			in := contribution("root", "Robin", "tok-1")
			in.Avatar = strings.NewReader("x")
			in.AvatarSize = 6 << 20

			_, err := svc.Contribute(ctx, in)
			So(err, ShouldEqual, service.ErrAvatarTooLarge)
		})
	})
}

func TestListWords(t *testing.T) {
	Convey("Given a store holding entries without coordinates", t, func() {
		ctx := context.Background()
		tick := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		store := repository.NewMemStore(repository.WithClock(func() time.Time {
			tick = tick.Add(time.Second)
			return tick
		}))

		first, _ := store.Insert(ctx, word.Entry{Term: "early", DisplayName: "A", OwnerToken: "t1"})
		second, _ := store.Insert(ctx, word.Entry{Term: "late", DisplayName: "B", OwnerToken: "t2"})

		svc := startService(ctx, service.WithStore(store))
		defer svc.Stop()

		Convey("When the listing is requested", func() {
			views, err := svc.ListWords(ctx)
			So(err, ShouldBeNil)
			So(views, ShouldHaveLength, 2)

			byID := map[string]service.WordView{}
			for _, v := range views {
				byID[v.ID] = v
			}

			Convey("Then coordinates are assigned in creation order", func() {
				So(*byID[first.ID].SlotIndex, ShouldEqual, 0)
				So(*byID[second.ID].SlotIndex, ShouldEqual, 1)
			})

			Convey("Then the assignments are persisted asynchronously", func() {
				deadline := time.After(2 * time.Second)
				for {
					e, err := store.Get(ctx, first.ID)
					So(err, ShouldBeNil)
					if e.Positioned() {
						break
					}
					select {
					case <-deadline:
						t.Fatal("write-back never persisted the coordinate")
					case <-time.After(10 * time.Millisecond):
					}
				}
			})
		})
	})
}

func TestDeleteWord(t *testing.T) {
	Convey("Given a service with one word", t, func() {
		ctx := context.Background()
		svc := startService(ctx)
		defer svc.Stop()

		v, err := svc.Contribute(ctx, contribution("root", "Robin", "tok-1"))
		So(err, ShouldBeNil)

		Convey("When the wrong token tries to delete it", func() {
			So(svc.DeleteWord(ctx, v.ID, "tok-2"), ShouldEqual, service.ErrNotOwner)
		})

		Convey("When the id is unknown", func() {
			So(svc.DeleteWord(ctx, "nope", "tok-1"), ShouldEqual, repository.ErrNotFound)
		})

		Convey("When the owner deletes it", func() {
			So(svc.DeleteWord(ctx, v.ID, "tok-1"), ShouldBeNil)

			Convey("Then the slot is free for the next contribution", func() {
				next, err := svc.Contribute(ctx, contribution("regrown", "Kai", "tok-3"))
				So(err, ShouldBeNil)
				So(*next.LayerIndex, ShouldEqual, 0)
				So(*next.SlotIndex, ShouldEqual, 0)
			})
		})
	})

	Convey("Given three words where the middle one is removed", t, func() {
		ctx := context.Background()
		svc := startService(ctx)
		defer svc.Stop()

		_, _ = svc.Contribute(ctx, contribution("a", "A", "t1"))
		b, _ := svc.Contribute(ctx, contribution("b", "B", "t2"))
		_, _ = svc.Contribute(ctx, contribution("c", "C", "t3"))

		So(svc.DeleteWord(ctx, b.ID, "t2"), ShouldBeNil)

		Convey("Then the freed slot is reused before any new one", func() {
			next, err := svc.Contribute(ctx, contribution("d", "D", "t4"))
			So(err, ShouldBeNil)
			So(*next.LayerIndex, ShouldEqual, 0)
			So(*next.SlotIndex, ShouldEqual, 1)
		})
	})
}

func TestGetStats(t *testing.T) {
	Convey("Given a running service", t, func() {
		ctx := context.Background()
		svc := startService(ctx)
		defer svc.Stop()

		_, _ = svc.Contribute(ctx, contribution("root", "Robin", "tok-1"))

		Convey("Then the stats describe the ring and its contents", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["baseCapacity"], ShouldEqual, 4)
			So(stats["maxLayer"], ShouldEqual, -1)
			So(stats["totalWords"], ShouldEqual, 1)
			So(stats["singlePerVisitor"], ShouldBeTrue)
		})
	})
}
