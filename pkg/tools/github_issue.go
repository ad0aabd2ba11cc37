package tools

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	gogithub "github.com/google/go-github/v60/github"
	"github.com/mark3labs/mcp-go/mcp"

	gh "github.com/theapemachine/ghops/pkg/github"
)

type IssueTool struct {
	gateway *gh.Gateway
}

func NewIssueTool(gateway *gh.Gateway) *IssueTool {
	return &IssueTool{gateway: gateway}
}

func (it *IssueTool) Tool() mcp.Tool {
	return mcp.NewTool(
		"manage_issue",
		mcp.WithDescription("Manage GitHub issues: create, get, update, list, comment, and close."),
		mcp.WithString("operation",
			mcp.Required(),
			mcp.Description("Issue operation to perform"),
			mcp.Enum("create", "get", "update", "list", "comment", "close"),
		),
		mcp.WithString("owner", mcp.Description("Repository owner (required for every operation)")),
		mcp.WithString("repo", mcp.Description("Repository name (required for every operation)")),
		mcp.WithNumber("issue_number", mcp.Description("Issue number (required for get, update, comment, close)")),
		mcp.WithString("title", mcp.Description("Issue title (required for create)")),
		mcp.WithString("body", mcp.Description("Issue body in Markdown")),
		mcp.WithArray("labels",
			mcp.Description("Labels to apply"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("assignees",
			mcp.Description("Logins to assign"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("comment_body", mcp.Description("Comment text (required for comment)")),
		mcp.WithString("state", mcp.Description("State filter for list: open, closed, all")),
		mcp.WithString("state_reason", mcp.Description("Reason when closing: completed, not_planned")),
		mcp.WithNumber("page", mcp.Description("Page number for list results")),
		mcp.WithNumber("per_page", mcp.Description("Results per page for list results")),
		mcp.WithString("token", mcp.Description("GitHub token (optional, falls back to config or GITHUB_TOKEN)")),
	)
}

type issueParams struct {
	operation   string
	token       string
	owner       string
	repo        string
	issueNumber int64
	title       string
	body        string
	labels      []string
	assignees   []string
	commentBody string
	state       string
	stateReason string
	page        int
	perPage     int
}

func parseIssueParams(args map[string]any) issueParams {
	return issueParams{
		operation:   stringArg(args, "operation"),
		token:       stringArg(args, "token"),
		owner:       stringArg(args, "owner"),
		repo:        stringArg(args, "repo"),
		issueNumber: int64Arg(args, "issue_number"),
		title:       stringArg(args, "title"),
		body:        stringArg(args, "body"),
		labels:      stringSliceArg(args, "labels"),
		assignees:   stringSliceArg(args, "assignees"),
		commentBody: stringArg(args, "comment_body"),
		state:       stringArg(args, "state"),
		stateReason: stringArg(args, "state_reason"),
		page:        intArg(args, "page"),
		perPage:     intArg(args, "per_page"),
	}
}

func (params issueParams) validate() error {
	switch params.operation {
	case "create":
		return required(
			str("owner", params.owner),
			str("repo", params.repo),
			str("title", params.title),
		)
	case "get", "update", "close":
		return required(
			str("owner", params.owner),
			str("repo", params.repo),
			num("issue_number", params.issueNumber),
		)
	case "comment":
		return required(
			str("owner", params.owner),
			str("repo", params.repo),
			num("issue_number", params.issueNumber),
			str("comment_body", params.commentBody),
		)
	case "list":
		return required(str("owner", params.owner), str("repo", params.repo))
	default:
		return fmt.Errorf("unknown operation %q", params.operation)
	}
}

func (it *IssueTool) Handle(
	ctx context.Context, req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	params := parseIssueParams(req.GetArguments())
	log.Info("manage_issue executing", "operation", params.operation)

	if err := params.validate(); err != nil {
		return invalidInput(err), nil
	}

	token, err := gh.ResolveToken(params.token)
	if err != nil {
		return errorEnvelope(err), nil
	}

	defer it.gateway.Disconnect()

	if err := it.gateway.Connect(ctx, token); err != nil {
		return errorEnvelope(err), nil
	}

	client, err := it.gateway.Client(token)
	if err != nil {
		return errorEnvelope(err), nil
	}

	payload, err := it.dispatch(ctx, client, params)
	if err != nil {
		return errorEnvelope(gh.Classify(err)), nil
	}

	return successEnvelope("issue", params.operation, payload), nil
}

func (it *IssueTool) dispatch(
	ctx context.Context, client *gogithub.Client, params issueParams,
) (any, error) {
	number := int(params.issueNumber)

	switch params.operation {
	case "create":
		request := &gogithub.IssueRequest{
			Title: gogithub.String(params.title),
		}
		if params.body != "" {
			request.Body = gogithub.String(params.body)
		}
		if len(params.labels) > 0 {
			request.Labels = &params.labels
		}
		if len(params.assignees) > 0 {
			request.Assignees = &params.assignees
		}

		issue, _, err := client.Issues.Create(ctx, params.owner, params.repo, request)
		return issue, err

	case "get":
		issue, _, err := client.Issues.Get(ctx, params.owner, params.repo, number)
		return issue, err

	case "update":
		request := &gogithub.IssueRequest{}
		if params.title != "" {
			request.Title = gogithub.String(params.title)
		}
		if params.body != "" {
			request.Body = gogithub.String(params.body)
		}
		if params.state != "" {
			request.State = gogithub.String(params.state)
		}
		if len(params.labels) > 0 {
			request.Labels = &params.labels
		}
		if len(params.assignees) > 0 {
			request.Assignees = &params.assignees
		}

		issue, _, err := client.Issues.Edit(ctx, params.owner, params.repo, number, request)
		return issue, err

	case "list":
		issues, _, err := client.Issues.ListByRepo(ctx, params.owner, params.repo,
			&gogithub.IssueListByRepoOptions{
				State:       params.state,
				Labels:      params.labels,
				ListOptions: gogithub.ListOptions{Page: params.page, PerPage: params.perPage},
			})
		return issues, err

	case "comment":
		comment, _, err := client.Issues.CreateComment(ctx, params.owner, params.repo, number,
			&gogithub.IssueComment{Body: gogithub.String(params.commentBody)})
		return comment, err

	case "close":
		reason := params.stateReason
		if reason == "" {
			reason = "completed"
		}

		issue, _, err := client.Issues.Edit(ctx, params.owner, params.repo, number,
			&gogithub.IssueRequest{
				State:       gogithub.String("closed"),
				StateReason: gogithub.String(reason),
			})
		return issue, err
	}

	return nil, fmt.Errorf("unknown operation %q", params.operation)
}
