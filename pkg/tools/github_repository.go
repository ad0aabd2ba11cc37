package tools

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	gogithub "github.com/google/go-github/v60/github"
	"github.com/mark3labs/mcp-go/mcp"

	gh "github.com/theapemachine/ghops/pkg/github"
)

type RepositoryTool struct {
	gateway *gh.Gateway
}

func NewRepositoryTool(gateway *gh.Gateway) *RepositoryTool {
	return &RepositoryTool{gateway: gateway}
}

func (rt *RepositoryTool) Tool() mcp.Tool {
	return mcp.NewTool(
		"manage_repository",
		mcp.WithDescription("Manage GitHub repositories: create, get, update, delete, list, fork, and transfer."),
		mcp.WithString("operation",
			mcp.Required(),
			mcp.Description("Repository operation to perform"),
			mcp.Enum("create", "get", "update", "delete", "list", "fork", "transfer"),
		),
		mcp.WithString("owner", mcp.Description("Repository owner (required for get, update, delete, fork, transfer)")),
		mcp.WithString("repo", mcp.Description("Repository name (required for get, update, delete, fork, transfer)")),
		mcp.WithString("name", mcp.Description("Name for the repository (required for create, optional rename on update)")),
		mcp.WithString("description", mcp.Description("Repository description")),
		mcp.WithBoolean("private", mcp.Description("Whether the repository is private")),
		mcp.WithBoolean("auto_init", mcp.Description("Initialize the new repository with an empty README")),
		mcp.WithString("new_owner", mcp.Description("Target user or organization (required for transfer)")),
		mcp.WithString("organization", mcp.Description("Organization to create or fork into (optional)")),
		mcp.WithNumber("page", mcp.Description("Page number for list results")),
		mcp.WithNumber("per_page", mcp.Description("Results per page for list results")),
		mcp.WithString("token", mcp.Description("GitHub token (optional, falls back to config or GITHUB_TOKEN)")),
	)
}

type repositoryParams struct {
	operation    string
	token        string
	owner        string
	repo         string
	name         string
	description  string
	private      bool
	privateSet   bool
	autoInit     bool
	newOwner     string
	organization string
	page         int
	perPage      int
}

func parseRepositoryParams(args map[string]any) repositoryParams {
	_, privateSet := args["private"]

	return repositoryParams{
		operation:    stringArg(args, "operation"),
		token:        stringArg(args, "token"),
		owner:        stringArg(args, "owner"),
		repo:         stringArg(args, "repo"),
		name:         stringArg(args, "name"),
		description:  stringArg(args, "description"),
		private:      boolArg(args, "private"),
		privateSet:   privateSet,
		autoInit:     boolArg(args, "auto_init"),
		newOwner:     stringArg(args, "new_owner"),
		organization: stringArg(args, "organization"),
		page:         intArg(args, "page"),
		perPage:      intArg(args, "per_page"),
	}
}

func (params repositoryParams) validate() error {
	switch params.operation {
	case "create":
		return required(str("name", params.name))
	case "get", "update", "delete", "fork":
		return required(str("owner", params.owner), str("repo", params.repo))
	case "transfer":
		return required(
			str("owner", params.owner),
			str("repo", params.repo),
			str("new_owner", params.newOwner),
		)
	case "list":
		return nil
	default:
		return fmt.Errorf("unknown operation %q", params.operation)
	}
}

func (rt *RepositoryTool) Handle(
	ctx context.Context, req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	params := parseRepositoryParams(req.GetArguments())
	log.Info("manage_repository executing", "operation", params.operation)

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

	return successEnvelope("repository", params.operation, payload), nil
}

func (rt *RepositoryTool) dispatch(
	ctx context.Context, client *gogithub.Client, params repositoryParams,
) (any, error) {
	switch params.operation {
	case "create":
		repository := &gogithub.Repository{
			Name:     gogithub.String(params.name),
			Private:  gogithub.Bool(params.private),
			AutoInit: gogithub.Bool(params.autoInit),
		}
		if params.description != "" {
			repository.Description = gogithub.String(params.description)
		}

		created, _, err := client.Repositories.Create(ctx, params.organization, repository)
		return created, err

	case "get":
		repository, _, err := client.Repositories.Get(ctx, params.owner, params.repo)
		return repository, err

	case "update":
		update := &gogithub.Repository{}
		if params.name != "" {
			update.Name = gogithub.String(params.name)
		}
		if params.description != "" {
			update.Description = gogithub.String(params.description)
		}
		if params.privateSet {
			update.Private = gogithub.Bool(params.private)
		}

		updated, _, err := client.Repositories.Edit(ctx, params.owner, params.repo, update)
		return updated, err

	case "delete":
		if _, err := client.Repositories.Delete(ctx, params.owner, params.repo); err != nil {
			return nil, err
		}
		return ack(
			"status", "deleted",
			"repository", params.owner+"/"+params.repo,
		), nil

	case "list":
		repositories, _, err := client.Repositories.List(ctx, params.owner, &gogithub.RepositoryListOptions{
			ListOptions: gogithub.ListOptions{Page: params.page, PerPage: params.perPage},
		})
		return repositories, err

	case "fork":
		forked, _, err := client.Repositories.CreateFork(ctx, params.owner, params.repo,
			&gogithub.RepositoryCreateForkOptions{Organization: params.organization})
		// Forking is asynchronous; 202 means the fork was queued.
		if err != nil && !gh.IsAccepted(err) {
			return nil, err
		}
		if forked != nil {
			return forked, nil
		}
		return ack(
			"status", "fork queued",
			"repository", params.owner+"/"+params.repo,
		), nil

	case "transfer":
		transferred, _, err := client.Repositories.Transfer(ctx, params.owner, params.repo,
			gogithub.TransferRequest{NewOwner: params.newOwner})
		if err != nil && !gh.IsAccepted(err) {
			return nil, err
		}
		if transferred != nil {
			return transferred, nil
		}
		return ack(
			"status", "transfer initiated",
			"repository", params.owner+"/"+params.repo,
			"new_owner", params.newOwner,
		), nil
	}

	return nil, fmt.Errorf("unknown operation %q", params.operation)
}
