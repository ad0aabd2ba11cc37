package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	gogithub "github.com/google/go-github/v60/github"
	. "github.com/smartystreets/goconvey/convey"
)

func upstreamError(status int, message string) error {
	return &gogithub.ErrorResponse{
		Response: &http.Response{
			StatusCode: status,
			Request:    &http.Request{},
		},
		Message: message,
	}
}

func TestClassify(t *testing.T) {
	Convey("Given upstream failures with HTTP status codes", t, func() {
		Convey("401 becomes an authentication error", func() {
			err := Classify(upstreamError(http.StatusUnauthorized, "Bad credentials"))

			var apiErr *APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Kind, ShouldEqual, KindAuthentication)
			So(apiErr.Error(), ShouldContainSubstring, "invalid or expired")
		})

		Convey("403 becomes an authorization error", func() {
			err := Classify(upstreamError(http.StatusForbidden, "Forbidden"))

			var apiErr *APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Kind, ShouldEqual, KindAuthorization)
			So(apiErr.Error(), ShouldContainSubstring, "permissions or rate limit")
		})

		Convey("404 becomes a not-found error", func() {
			err := Classify(upstreamError(http.StatusNotFound, "Not Found"))

			var apiErr *APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Kind, ShouldEqual, KindNotFound)
			So(apiErr.Error(), ShouldContainSubstring, "not found")
		})

		Convey("422 becomes an upstream validation error carrying the message", func() {
			err := Classify(upstreamError(http.StatusUnprocessableEntity, "Validation Failed"))

			var apiErr *APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Kind, ShouldEqual, KindUpstreamValidation)
			So(apiErr.Error(), ShouldContainSubstring, "invalid request parameters")
			So(apiErr.Error(), ShouldContainSubstring, "Validation Failed")
		})

		Convey("Any other status becomes an internal error", func() {
			err := Classify(upstreamError(http.StatusBadGateway, "boom"))

			var apiErr *APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Kind, ShouldEqual, KindInternal)
		})
	})

	Convey("Given a rate limit error", t, func() {
		err := Classify(&gogithub.RateLimitError{Message: "rate limited"})

		var apiErr *APIError
		So(errors.As(err, &apiErr), ShouldBeTrue)
		So(apiErr.Kind, ShouldEqual, KindAuthorization)
	})

	Convey("Given a timeout", t, func() {
		err := Classify(fmt.Errorf("request failed: %w", context.DeadlineExceeded))

		var apiErr *APIError
		So(errors.As(err, &apiErr), ShouldBeTrue)
		So(apiErr.Kind, ShouldEqual, KindInternal)
		So(apiErr.Error(), ShouldContainSubstring, "timed out")
	})

	Convey("Given an unrecognized transport fault", t, func() {
		err := Classify(errors.New("connection refused"))

		var apiErr *APIError
		So(errors.As(err, &apiErr), ShouldBeTrue)
		So(apiErr.Kind, ShouldEqual, KindInternal)
	})

	Convey("Given no error at all", t, func() {
		So(Classify(nil), ShouldBeNil)
	})

	Convey("Given a 202 Accepted", t, func() {
		So(IsAccepted(&gogithub.AcceptedError{}), ShouldBeTrue)
		So(IsAccepted(errors.New("other")), ShouldBeFalse)
	})
}
