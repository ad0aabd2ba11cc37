package tools

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	gogithub "github.com/google/go-github/v60/github"
	"github.com/mark3labs/mcp-go/mcp"

	gh "github.com/theapemachine/ghops/pkg/github"
)

type PullRequestTool struct {
	gateway *gh.Gateway
}

func NewPullRequestTool(gateway *gh.Gateway) *PullRequestTool {
	return &PullRequestTool{gateway: gateway}
}

func (pt *PullRequestTool) Tool() mcp.Tool {
	return mcp.NewTool(
		"manage_pull_request",
		mcp.WithDescription("Manage GitHub pull requests: create, get, update, list, merge, and review."),
		mcp.WithString("operation",
			mcp.Required(),
			mcp.Description("Pull request operation to perform"),
			mcp.Enum("create", "get", "update", "list", "merge", "review"),
		),
		mcp.WithString("owner", mcp.Description("Repository owner (required for every operation)")),
		mcp.WithString("repo", mcp.Description("Repository name (required for every operation)")),
		mcp.WithNumber("pull_number", mcp.Description("Pull request number (required for get, update, merge, review)")),
		mcp.WithString("title", mcp.Description("Pull request title (required for create)")),
		mcp.WithString("body", mcp.Description("Pull request body in Markdown")),
		mcp.WithString("head", mcp.Description("Branch with the changes (required for create)")),
		mcp.WithString("base", mcp.Description("Branch to merge into (required for create)")),
		mcp.WithBoolean("draft", mcp.Description("Open the pull request as a draft")),
		mcp.WithString("state", mcp.Description("State filter for list, or new state on update: open, closed")),
		mcp.WithString("merge_method", mcp.Description("Merge method: merge, squash, rebase")),
		mcp.WithString("commit_title", mcp.Description("Title of the merge commit")),
		mcp.WithString("commit_message", mcp.Description("Message of the merge commit")),
		mcp.WithString("review_event",
			mcp.Description("Review verdict (required for review): APPROVE, REQUEST_CHANGES, COMMENT"),
			mcp.Enum("APPROVE", "REQUEST_CHANGES", "COMMENT"),
		),
		mcp.WithString("review_body", mcp.Description("Review comment text")),
		mcp.WithNumber("page", mcp.Description("Page number for list results")),
		mcp.WithNumber("per_page", mcp.Description("Results per page for list results")),
		mcp.WithString("token", mcp.Description("GitHub token (optional, falls back to config or GITHUB_TOKEN)")),
	)
}

type pullRequestParams struct {
	operation     string
	token         string
	owner         string
	repo          string
	pullNumber    int64
	title         string
	body          string
	head          string
	base          string
	draft         bool
	state         string
	mergeMethod   string
	commitTitle   string
	commitMessage string
	reviewEvent   string
	reviewBody    string
	page          int
	perPage       int
}

func parsePullRequestParams(args map[string]any) pullRequestParams {
	return pullRequestParams{
		operation:     stringArg(args, "operation"),
		token:         stringArg(args, "token"),
		owner:         stringArg(args, "owner"),
		repo:          stringArg(args, "repo"),
		pullNumber:    int64Arg(args, "pull_number"),
		title:         stringArg(args, "title"),
		body:          stringArg(args, "body"),
		head:          stringArg(args, "head"),
		base:          stringArg(args, "base"),
		draft:         boolArg(args, "draft"),
		state:         stringArg(args, "state"),
		mergeMethod:   stringArg(args, "merge_method"),
		commitTitle:   stringArg(args, "commit_title"),
		commitMessage: stringArg(args, "commit_message"),
		reviewEvent:   stringArg(args, "review_event"),
		reviewBody:    stringArg(args, "review_body"),
		page:          intArg(args, "page"),
		perPage:       intArg(args, "per_page"),
	}
}

func (params pullRequestParams) validate() error {
	switch params.operation {
	case "create":
		return required(
			str("owner", params.owner),
			str("repo", params.repo),
			str("title", params.title),
			str("head", params.head),
			str("base", params.base),
		)
	case "get", "update", "merge":
		return required(
			str("owner", params.owner),
			str("repo", params.repo),
			num("pull_number", params.pullNumber),
		)
	case "review":
		return required(
			str("owner", params.owner),
			str("repo", params.repo),
			num("pull_number", params.pullNumber),
			str("review_event", params.reviewEvent),
		)
	case "list":
		return required(str("owner", params.owner), str("repo", params.repo))
	default:
		return fmt.Errorf("unknown operation %q", params.operation)
	}
}

func (pt *PullRequestTool) Handle(
	ctx context.Context, req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	params := parsePullRequestParams(req.GetArguments())
	log.Info("manage_pull_request executing", "operation", params.operation)

	if err := params.validate(); err != nil {
		return invalidInput(err), nil
	}

	token, err := gh.ResolveToken(params.token)
	if err != nil {
		return errorEnvelope(err), nil
	}

	defer pt.gateway.Disconnect()

	if err := pt.gateway.Connect(ctx, token); err != nil {
		return errorEnvelope(err), nil
	}

	client, err := pt.gateway.Client(token)
	if err != nil {
		return errorEnvelope(err), nil
	}

	payload, err := pt.dispatch(ctx, client, params)
	if err != nil {
		return errorEnvelope(gh.Classify(err)), nil
	}

	return successEnvelope("pull request", params.operation, payload), nil
}

func (pt *PullRequestTool) dispatch(
	ctx context.Context, client *gogithub.Client, params pullRequestParams,
) (any, error) {
	number := int(params.pullNumber)

	switch params.operation {
	case "create":
		request := &gogithub.NewPullRequest{
			Title: gogithub.String(params.title),
			Head:  gogithub.String(params.head),
			Base:  gogithub.String(params.base),
			Draft: gogithub.Bool(params.draft),
		}
		if params.body != "" {
			request.Body = gogithub.String(params.body)
		}

		pull, _, err := client.PullRequests.Create(ctx, params.owner, params.repo, request)
		return pull, err

	case "get":
		pull, _, err := client.PullRequests.Get(ctx, params.owner, params.repo, number)
		return pull, err

	case "update":
		update := &gogithub.PullRequest{}
		if params.title != "" {
			update.Title = gogithub.String(params.title)
		}
		if params.body != "" {
			update.Body = gogithub.String(params.body)
		}
		if params.state != "" {
			update.State = gogithub.String(params.state)
		}

		pull, _, err := client.PullRequests.Edit(ctx, params.owner, params.repo, number, update)
		return pull, err

	case "list":
		pulls, _, err := client.PullRequests.List(ctx, params.owner, params.repo,
			&gogithub.PullRequestListOptions{
				State:       params.state,
				Head:        params.head,
				Base:        params.base,
				ListOptions: gogithub.ListOptions{Page: params.page, PerPage: params.perPage},
			})
		return pulls, err

	case "merge":
		result, _, err := client.PullRequests.Merge(ctx, params.owner, params.repo, number,
			params.commitMessage, &gogithub.PullRequestOptions{
				CommitTitle: params.commitTitle,
				MergeMethod: params.mergeMethod,
			})
		return result, err

	case "review":
		request := &gogithub.PullRequestReviewRequest{
			Event: gogithub.String(params.reviewEvent),
		}
		if params.reviewBody != "" {
			request.Body = gogithub.String(params.reviewBody)
		}

		review, _, err := client.PullRequests.CreateReview(
			ctx, params.owner, params.repo, number, request,
		)
		return review, err
	}

	return nil, fmt.Errorf("unknown operation %q", params.operation)
}
