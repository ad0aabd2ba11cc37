package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	gogithub "github.com/google/go-github/v60/github"
	"github.com/mark3labs/mcp-go/mcp"

	gh "github.com/theapemachine/ghops/pkg/github"
)

type SearchTool struct {
	gateway *gh.Gateway
}

func NewSearchTool(gateway *gh.Gateway) *SearchTool {
	return &SearchTool{gateway: gateway}
}

func (st *SearchTool) Tool() mcp.Tool {
	return mcp.NewTool(
		"search_github",
		mcp.WithDescription("Search GitHub: repositories, issues, pull requests, code, users, and commits."),
		mcp.WithString("operation",
			mcp.Required(),
			mcp.Description("Search index to query"),
			mcp.Enum("repositories", "issues", "pull_requests", "code", "users", "commits"),
		),
		mcp.WithString("query", mcp.Required(), mcp.Description("Free-text search query")),
		mcp.WithString("owner", mcp.Description("Restrict results to a user or organization")),
		mcp.WithString("language", mcp.Description("Restrict results to a language")),
		mcp.WithString("sort", mcp.Description("Sort field, index specific (stars, forks, updated, ...)")),
		mcp.WithString("order", mcp.Description("Sort order: asc or desc")),
		mcp.WithNumber("page", mcp.Description("Page number for results")),
		mcp.WithNumber("per_page", mcp.Description("Results per page")),
		mcp.WithString("token", mcp.Description("GitHub token (optional, falls back to config or GITHUB_TOKEN)")),
	)
}

type searchParams struct {
	operation string
	token     string
	query     string
	owner     string
	language  string
	sort      string
	order     string
	page      int
	perPage   int
}

func parseSearchParams(args map[string]any) searchParams {
	return searchParams{
		operation: stringArg(args, "operation"),
		token:     stringArg(args, "token"),
		query:     stringArg(args, "query"),
		owner:     stringArg(args, "owner"),
		language:  stringArg(args, "language"),
		sort:      stringArg(args, "sort"),
		order:     stringArg(args, "order"),
		page:      intArg(args, "page"),
		perPage:   intArg(args, "per_page"),
	}
}

func (params searchParams) validate() error {
	switch params.operation {
	case "repositories", "issues", "pull_requests", "code", "users", "commits":
		return required(str("query", params.query))
	default:
		return fmt.Errorf("unknown operation %q", params.operation)
	}
}

/*
buildQuery appends search qualifiers derived from the filter fields to the
free-text query, the same shaping the web search bar applies.
*/
func (params searchParams) buildQuery() string {
	parts := []string{params.query}

	if params.owner != "" {
		parts = append(parts, "user:"+params.owner)
	}

	if params.language != "" {
		parts = append(parts, "language:"+params.language)
	}

	if params.operation == "pull_requests" {
		parts = append(parts, "is:pr")
	}

	return strings.Join(parts, " ")
}

func (st *SearchTool) Handle(
	ctx context.Context, req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	params := parseSearchParams(req.GetArguments())
	log.Info("search_github executing", "operation", params.operation)

	if err := params.validate(); err != nil {
		return invalidInput(err), nil
	}

	token, err := gh.ResolveToken(params.token)
	if err != nil {
		return errorEnvelope(err), nil
	}

	defer st.gateway.Disconnect()

	if err := st.gateway.Connect(ctx, token); err != nil {
		return errorEnvelope(err), nil
	}

	client, err := st.gateway.Client(token)
	if err != nil {
		return errorEnvelope(err), nil
	}

	payload, err := st.dispatch(ctx, client, params)
	if err != nil {
		return errorEnvelope(gh.Classify(err)), nil
	}

	return successEnvelope("search", params.operation, payload), nil
}

func (st *SearchTool) dispatch(
	ctx context.Context, client *gogithub.Client, params searchParams,
) (any, error) {
	query := params.buildQuery()
	opts := &gogithub.SearchOptions{
		Sort:        params.sort,
		Order:       params.order,
		ListOptions: gogithub.ListOptions{Page: params.page, PerPage: params.perPage},
	}

	switch params.operation {
	case "repositories":
		result, _, err := client.Search.Repositories(ctx, query, opts)
		return result, err

	case "issues", "pull_requests":
		result, _, err := client.Search.Issues(ctx, query, opts)
		return result, err

	case "code":
		result, _, err := client.Search.Code(ctx, query, opts)
		return result, err

	case "users":
		result, _, err := client.Search.Users(ctx, query, opts)
		return result, err

	case "commits":
		result, _, err := client.Search.Commits(ctx, query, opts)
		return result, err
	}

	return nil, fmt.Errorf("unknown operation %q", params.operation)
}
