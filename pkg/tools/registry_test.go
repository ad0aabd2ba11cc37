package tools

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	gh "github.com/theapemachine/ghops/pkg/github"
)

func firstText(res *mcp.CallToolResult) string {
	if res == nil || len(res.Content) == 0 {
		return ""
	}

	if tc, ok := mcp.AsTextContent(res.Content[0]); ok {
		return tc.Text
	}

	return ""
}

func TestRegistry(t *testing.T) {
	Convey("Given a registry with every command enabled", t, func() {
		viper.Set("tools.enabled", []string{})
		registry := NewRegistry(gh.NewGateway())

		Convey("List advertises all seven commands in registration order", func() {
			listed := registry.List()

			So(len(listed), ShouldEqual, 7)
			So(listed[0].Name, ShouldEqual, "manage_repository")
			So(listed[6].Name, ShouldEqual, "search_github")
		})

		Convey("Routing a name that does not exist reports so", func() {
			res, err := registry.Route(context.Background(), "manage_gists", nil)

			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeTrue)
			So(firstText(res), ShouldContainSubstring, "does not exist")
		})
	})

	Convey("Given a registry with a restricted enabled subset", t, func() {
		viper.Set("tools.enabled", []string{"manage_repository"})
		registry := NewRegistry(gh.NewGateway())

		Reset(func() {
			viper.Set("tools.enabled", []string{})
		})

		Convey("List only advertises the enabled command", func() {
			listed := registry.List()

			So(len(listed), ShouldEqual, 1)
			So(listed[0].Name, ShouldEqual, "manage_repository")
		})

		Convey("Routing a disabled command distinguishes it from a missing one", func() {
			res, err := registry.Route(context.Background(), "manage_issue", nil)

			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeTrue)
			So(firstText(res), ShouldContainSubstring, "registered but not enabled")
		})
	})

	Convey("Given a routed call with invalid input", t, func() {
		viper.Set("tools.enabled", []string{})
		registry := NewRegistry(gh.NewGateway())

		res, err := registry.Route(context.Background(), "manage_repository", map[string]any{
			"operation": "create",
		})

		Convey("The command's own validation envelope comes back", func() {
			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeTrue)
			So(firstText(res), ShouldContainSubstring, "Invalid input")
			So(firstText(res), ShouldContainSubstring, "name")
		})
	})
}
