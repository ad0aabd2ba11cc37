package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	gogithub "github.com/google/go-github/v60/github"
	"github.com/mark3labs/mcp-go/mcp"

	gh "github.com/theapemachine/ghops/pkg/github"
)

type ReleaseTool struct {
	gateway *gh.Gateway
}

func NewReleaseTool(gateway *gh.Gateway) *ReleaseTool {
	return &ReleaseTool{gateway: gateway}
}

func (rt *ReleaseTool) Tool() mcp.Tool {
	return mcp.NewTool(
		"manage_release",
		mcp.WithDescription("Manage GitHub releases: create, get, get_latest, list, update, and delete."),
		mcp.WithString("operation",
			mcp.Required(),
			mcp.Description("Release operation to perform"),
			mcp.Enum("create", "get", "get_latest", "list", "update", "delete"),
		),
		mcp.WithString("owner", mcp.Description("Repository owner (required for every operation)")),
		mcp.WithString("repo", mcp.Description("Repository name (required for every operation)")),
		mcp.WithString("tag_name", mcp.Description("Git tag for the release (required for create; get accepts it instead of release_id)")),
		mcp.WithNumber("release_id", mcp.Description("Release identifier (required for update and delete)")),
		mcp.WithString("name", mcp.Description("Release title")),
		mcp.WithString("body", mcp.Description("Release notes in Markdown")),
		mcp.WithBoolean("draft", mcp.Description("Create as a draft release")),
		mcp.WithBoolean("prerelease", mcp.Description("Mark as a prerelease")),
		mcp.WithString("target_commitish", mcp.Description("Commitish the tag is created from, when the tag does not exist yet")),
		mcp.WithNumber("page", mcp.Description("Page number for list results")),
		mcp.WithNumber("per_page", mcp.Description("Results per page for list results")),
		mcp.WithString("token", mcp.Description("GitHub token (optional, falls back to config or GITHUB_TOKEN)")),
	)
}

type releaseParams struct {
	operation       string
	token           string
	owner           string
	repo            string
	tagName         string
	releaseID       int64
	name            string
	body            string
	draft           bool
	prerelease      bool
	targetCommitish string
	page            int
	perPage         int
}

func parseReleaseParams(args map[string]any) releaseParams {
	return releaseParams{
		operation:       stringArg(args, "operation"),
		token:           stringArg(args, "token"),
		owner:           stringArg(args, "owner"),
		repo:            stringArg(args, "repo"),
		tagName:         stringArg(args, "tag_name"),
		releaseID:       int64Arg(args, "release_id"),
		name:            stringArg(args, "name"),
		body:            stringArg(args, "body"),
		draft:           boolArg(args, "draft"),
		prerelease:      boolArg(args, "prerelease"),
		targetCommitish: stringArg(args, "target_commitish"),
		page:            intArg(args, "page"),
		perPage:         intArg(args, "per_page"),
	}
}

func (params releaseParams) validate() error {
	switch params.operation {
	case "create":
		return required(
			str("owner", params.owner),
			str("repo", params.repo),
			str("tag_name", params.tagName),
		)
	case "get":
		if err := required(str("owner", params.owner), str("repo", params.repo)); err != nil {
			return err
		}
		// Either identifier selects the release.
		if params.releaseID == 0 && params.tagName == "" {
			return errors.New("missing required fields for this operation: release_id or tag_name")
		}
		return nil
	case "get_latest", "list":
		return required(str("owner", params.owner), str("repo", params.repo))
	case "update", "delete":
		return required(
			str("owner", params.owner),
			str("repo", params.repo),
			num("release_id", params.releaseID),
		)
	default:
		return fmt.Errorf("unknown operation %q", params.operation)
	}
}

func (rt *ReleaseTool) Handle(
	ctx context.Context, req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	params := parseReleaseParams(req.GetArguments())
	log.Info("manage_release executing", "operation", params.operation)

	if err := params.validate(); err != nil {
		return invalidInput(err), nil
	}

	token, err := gh.ResolveToken(params.token)
	if err != nil {
		return errorEnvelope(err), nil
	}

	defer rt.gateway.Disconnect()

	if err := rt.gateway.Connect(ctx, token); err != nil {
		return errorEnvelope(err), nil
	}

	client, err := rt.gateway.Client(token)
	if err != nil {
		return errorEnvelope(err), nil
	}

	payload, err := rt.dispatch(ctx, client, params)
	if err != nil {
		return errorEnvelope(gh.Classify(err)), nil
	}

	return successEnvelope("release", params.operation, payload), nil
}

func (rt *ReleaseTool) dispatch(
	ctx context.Context, client *gogithub.Client, params releaseParams,
) (any, error) {
	switch params.operation {
	case "create":
		release := &gogithub.RepositoryRelease{
			TagName:    gogithub.String(params.tagName),
			Draft:      gogithub.Bool(params.draft),
			Prerelease: gogithub.Bool(params.prerelease),
		}
		if params.name != "" {
			release.Name = gogithub.String(params.name)
		}
		if params.body != "" {
			release.Body = gogithub.String(params.body)
		}
		if params.targetCommitish != "" {
			release.TargetCommitish = gogithub.String(params.targetCommitish)
		}

		created, _, err := client.Repositories.CreateRelease(ctx, params.owner, params.repo, release)
		return created, err

	case "get":
		if params.releaseID != 0 {
			release, _, err := client.Repositories.GetRelease(
				ctx, params.owner, params.repo, params.releaseID,
			)
			return release, err
		}

		release, _, err := client.Repositories.GetReleaseByTag(
			ctx, params.owner, params.repo, params.tagName,
		)
		return release, err

	case "get_latest":
		release, _, err := client.Repositories.GetLatestRelease(ctx, params.owner, params.repo)
		return release, err

	case "list":
		releases, _, err := client.Repositories.ListReleases(ctx, params.owner, params.repo,
			&gogithub.ListOptions{Page: params.page, PerPage: params.perPage})
		return releases, err

	case "update":
		update := &gogithub.RepositoryRelease{}
		if params.tagName != "" {
			update.TagName = gogithub.String(params.tagName)
		}
		if params.name != "" {
			update.Name = gogithub.String(params.name)
		}
		if params.body != "" {
			update.Body = gogithub.String(params.body)
		}

		release, _, err := client.Repositories.EditRelease(
			ctx, params.owner, params.repo, params.releaseID, update,
		)
		return release, err

	case "delete":
		if _, err := client.Repositories.DeleteRelease(
			ctx, params.owner, params.repo, params.releaseID,
		); err != nil {
			return nil, err
		}
		return ack(
			"status", "deleted",
			"release_id", fmt.Sprintf("%d", params.releaseID),
		), nil
	}

	return nil, fmt.Errorf("unknown operation %q", params.operation)
}
