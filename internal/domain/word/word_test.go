package word_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/Qwealzy/roots-of-sentient/internal/domain/ring"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/word"
	. "github.com/smartystreets/goconvey/convey"
)

func TestValidate(t *testing.T) {
	Convey("Given the default limits", t, func() {
		limits := word.DefaultLimits()

		Convey("When all fields are well-formed", func() {
			err := word.Validate(limits, "sapling", "Robin", "tok-1")
			So(err, ShouldBeNil)
		})

		Convey("When the term is empty", func() {
			err := word.Validate(limits, "   ", "Robin", "tok-1")
			So(err, ShouldNotBeNil)

			var verr *word.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Field, ShouldEqual, "term")
		})

		Convey("When the term is over-length", func() {
			err := word.Validate(limits, strings.Repeat("a", 65), "Robin", "tok-1")
			var verr *word.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Field, ShouldEqual, "term")
		})

		Convey("When the term is exactly at the limit", func() {
			err := word.Validate(limits, strings.Repeat("a", 64), "Robin", "tok-1")
			So(err, ShouldBeNil)
		})

		Convey("When the display name is missing", func() {
			err := word.Validate(limits, "sapling", "", "tok-1")
			var verr *word.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Field, ShouldEqual, "username")
		})

		Convey("When the owner token is missing", func() {
			err := word.Validate(limits, "sapling", "Robin", "")
			var verr *word.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Field, ShouldEqual, "clientToken")
		})

		Convey("When the length is counted in runes, not bytes", func() {
			err := word.Validate(limits, strings.Repeat("ä", 64), "Robin", "tok-1")
			So(err, ShouldBeNil)
		})
	})
}

func TestFolder(t *testing.T) {
	Convey("Given the default folder", t, func() {
		f := word.NewFolder("")

		Convey("Then keys fold case and surrounding space", func() {
			So(f.Key("Merhaba"), ShouldEqual, f.Key("merhaba"))
			So(f.Key("  root "), ShouldEqual, f.Key("root"))
			So(f.Key("Root"), ShouldNotEqual, f.Key("route"))
		})
	})

	Convey("Given a Turkish folder", t, func() {
		f := word.NewFolder("tr")

		Convey("Then the dotted and dotless i fold per locale", func() {
			// Uppercase I lowers to dotless ı in Turkish.
			So(f.Key("I"), ShouldEqual, "ı")
			So(f.Key("İ"), ShouldEqual, "i")
		})
	})

	Convey("Given an unparseable locale", t, func() {
		f := word.NewFolder("not a locale!!")

		Convey("Then folding falls back to default case mapping", func() {
			So(f.Key("Word"), ShouldEqual, "word")
		})
	})
}

func TestTermSet(t *testing.T) {
	Convey("Given a set seeded with existing terms", t, func() {
		s := word.NewTermSet(word.NewFolder(""), "Oak", "willow")

		Convey("Then equivalent spellings are detected", func() {
			So(s.Has("oak"), ShouldBeTrue)
			So(s.Has("OAK"), ShouldBeTrue)
			So(s.Has(" Willow "), ShouldBeTrue)
			So(s.Has("birch"), ShouldBeFalse)
		})

		Convey("When a new term is added", func() {
			s.Add("Birch")
			So(s.Has("birch"), ShouldBeTrue)
		})
	})
}

func TestEntry(t *testing.T) {
	Convey("Given an unpositioned entry", t, func() {
		e := word.Entry{ID: "a", Term: "root"}
		So(e.Positioned(), ShouldBeFalse)

		Convey("When a position is attached", func() {
			placed := e.WithPosition(ring.Coordinate{Layer: 1, Slot: 2})

			So(placed.Positioned(), ShouldBeTrue)
			So(*placed.Position, ShouldResemble, ring.Coordinate{Layer: 1, Slot: 2})

			Convey("Then the original is untouched", func() {
				So(e.Positioned(), ShouldBeFalse)
			})

			Convey("And it can be cleared again", func() {
				So(placed.WithoutPosition().Positioned(), ShouldBeFalse)
			})
		})
	})
}
