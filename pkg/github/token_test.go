package github

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestResolveToken(t *testing.T) {
	Convey("Given all three credential sources", t, func() {
		viper.Set("github.token", "B")
		t.Setenv("GITHUB_TOKEN", "C")

		Reset(func() {
			viper.Set("github.token", "")
		})

		Convey("An explicit token wins", func() {
			token, err := ResolveToken("A")

			So(err, ShouldBeNil)
			So(token, ShouldEqual, "A")
		})

		Convey("The configured token beats the environment", func() {
			token, err := ResolveToken("")

			So(err, ShouldBeNil)
			So(token, ShouldEqual, "B")
		})
	})

	Convey("Given only the environment variable", t, func() {
		viper.Set("github.token", "")
		t.Setenv("GITHUB_TOKEN", "C")

		Convey("The environment token is used", func() {
			token, err := ResolveToken("")

			So(err, ShouldBeNil)
			So(token, ShouldEqual, "C")
		})
	})

	Convey("Given no credential source at all", t, func() {
		viper.Set("github.token", "")
		t.Setenv("GITHUB_TOKEN", "")

		Convey("Resolution fails with the missing-credential error", func() {
			token, err := ResolveToken("")

			So(token, ShouldBeEmpty)
			So(err, ShouldEqual, ErrMissingCredential)
		})
	})
}
