package tools

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	gogithub "github.com/google/go-github/v60/github"
	"github.com/mark3labs/mcp-go/mcp"

	gh "github.com/theapemachine/ghops/pkg/github"
)

type BranchTool struct {
	gateway *gh.Gateway
}

func NewBranchTool(gateway *gh.Gateway) *BranchTool {
	return &BranchTool{gateway: gateway}
}

func (bt *BranchTool) Tool() mcp.Tool {
	return mcp.NewTool(
		"manage_branch",
		mcp.WithDescription("Manage GitHub branches: list, get, create, delete, and branch protection."),
		mcp.WithString("operation",
			mcp.Required(),
			mcp.Description("Branch operation to perform"),
			mcp.Enum("list", "get", "create", "delete", "protect", "get_protection", "update_protection", "unprotect"),
		),
		mcp.WithString("owner", mcp.Description("Repository owner (required for every operation)")),
		mcp.WithString("repo", mcp.Description("Repository name (required for every operation)")),
		mcp.WithString("branch", mcp.Description("Branch name (required for everything except list)")),
		mcp.WithString("from_branch", mcp.Description("Source branch for create (defaults to the repository's default branch)")),
		mcp.WithObject("protection",
			mcp.Description("Protection settings (required for protect and update_protection): enforce_admins, required_status_checks {strict, contexts}, required_pull_request_reviews {required_approving_review_count, dismiss_stale_reviews, require_code_owner_reviews}"),
		),
		mcp.WithNumber("page", mcp.Description("Page number for list results")),
		mcp.WithNumber("per_page", mcp.Description("Results per page for list results")),
		mcp.WithString("token", mcp.Description("GitHub token (optional, falls back to config or GITHUB_TOKEN)")),
	)
}

type branchParams struct {
	operation  string
	token      string
	owner      string
	repo       string
	branch     string
	fromBranch string
	protection map[string]any
	page       int
	perPage    int
}

func parseBranchParams(args map[string]any) branchParams {
	return branchParams{
		operation:  stringArg(args, "operation"),
		token:      stringArg(args, "token"),
		owner:      stringArg(args, "owner"),
		repo:       stringArg(args, "repo"),
		branch:     stringArg(args, "branch"),
		fromBranch: stringArg(args, "from_branch"),
		protection: objectArg(args, "protection"),
		page:       intArg(args, "page"),
		perPage:    intArg(args, "per_page"),
	}
}

func (params branchParams) validate() error {
	switch params.operation {
	case "list":
		return required(str("owner", params.owner), str("repo", params.repo))
	case "get", "create", "delete", "get_protection", "unprotect":
		return required(
			str("owner", params.owner),
			str("repo", params.repo),
			str("branch", params.branch),
		)
	case "protect", "update_protection":
		return required(
			str("owner", params.owner),
			str("repo", params.repo),
			str("branch", params.branch),
			obj("protection", params.protection),
		)
	default:
		return fmt.Errorf("unknown operation %q", params.operation)
	}
}

func (bt *BranchTool) Handle(
	ctx context.Context, req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	params := parseBranchParams(req.GetArguments())
	log.Info("manage_branch executing", "operation", params.operation)

	if err := params.validate(); err != nil {
		return invalidInput(err), nil
	}

	token, err := gh.ResolveToken(params.token)
	if err != nil {
		return errorEnvelope(err), nil
	}

	defer bt.gateway.Disconnect()

	if err := bt.gateway.Connect(ctx, token); err != nil {
		return errorEnvelope(err), nil
	}

	client, err := bt.gateway.Client(token)
	if err != nil {
		return errorEnvelope(err), nil
	}

	payload, err := bt.dispatch(ctx, client, params)
	if err != nil {
		return errorEnvelope(gh.Classify(err)), nil
	}

	return successEnvelope("branch", params.operation, payload), nil
}

func (bt *BranchTool) dispatch(
	ctx context.Context, client *gogithub.Client, params branchParams,
) (any, error) {
	switch params.operation {
	case "list":
		branches, _, err := client.Repositories.ListBranches(ctx, params.owner, params.repo,
			&gogithub.BranchListOptions{
				ListOptions: gogithub.ListOptions{Page: params.page, PerPage: params.perPage},
			})
		return branches, err

	case "get":
		branch, _, err := client.Repositories.GetBranch(
			ctx, params.owner, params.repo, params.branch, 0,
		)
		return branch, err

	case "create":
		return bt.createBranch(ctx, client, params)

	case "delete":
		if _, err := client.Git.DeleteRef(
			ctx, params.owner, params.repo, "heads/"+params.branch,
		); err != nil {
			return nil, err
		}
		return ack("status", "deleted", "branch", params.branch), nil

	case "protect", "update_protection":
		protection, _, err := client.Repositories.UpdateBranchProtection(
			ctx, params.owner, params.repo, params.branch,
			protectionRequest(params.protection),
		)
		return protection, err

	case "get_protection":
		protection, _, err := client.Repositories.GetBranchProtection(
			ctx, params.owner, params.repo, params.branch,
		)
		return protection, err

	case "unprotect":
		if _, err := client.Repositories.RemoveBranchProtection(
			ctx, params.owner, params.repo, params.branch,
		); err != nil {
			return nil, err
		}
		return ack("status", "protection removed", "branch", params.branch), nil
	}

	return nil, fmt.Errorf("unknown operation %q", params.operation)
}

/*
createBranch resolves the SHA to branch from, then creates the ref. The source
is from_branch when given, otherwise the repository's actual default branch.
Both steps are reads until the final ref creation, so a failure part-way
through leaves nothing to undo.
*/
func (bt *BranchTool) createBranch(
	ctx context.Context, client *gogithub.Client, params branchParams,
) (any, error) {
	source := params.fromBranch

	if source == "" {
		repository, _, err := client.Repositories.Get(ctx, params.owner, params.repo)
		if err != nil {
			return nil, err
		}
		source = repository.GetDefaultBranch()
	}

	ref, _, err := client.Git.GetRef(ctx, params.owner, params.repo, "heads/"+source)
	if err != nil {
		return nil, err
	}

	created, _, err := client.Git.CreateRef(ctx, params.owner, params.repo,
		&gogithub.Reference{
			Ref:    gogithub.String("refs/heads/" + params.branch),
			Object: &gogithub.GitObject{SHA: ref.Object.SHA},
		})
	return created, err
}

/*
protectionRequest maps the flat protection object from the tool arguments onto
the typed request. Unknown keys are ignored; absent sections stay nil so the
upstream clears them.
*/
func protectionRequest(settings map[string]any) *gogithub.ProtectionRequest {
	request := &gogithub.ProtectionRequest{
		EnforceAdmins: boolArg(settings, "enforce_admins"),
	}

	if checks := objectArg(settings, "required_status_checks"); checks != nil {
		contexts := stringSliceArg(checks, "contexts")
		request.RequiredStatusChecks = &gogithub.RequiredStatusChecks{
			Strict:   boolArg(checks, "strict"),
			Contexts: &contexts,
		}
	}

	if reviews := objectArg(settings, "required_pull_request_reviews"); reviews != nil {
		request.RequiredPullRequestReviews = &gogithub.PullRequestReviewsEnforcementRequest{
			RequiredApprovingReviewCount: intArg(reviews, "required_approving_review_count"),
			DismissStaleReviews:          boolArg(reviews, "dismiss_stale_reviews"),
			RequireCodeOwnerReviews:      boolArg(reviews, "require_code_owner_reviews"),
		}
	}

	return request
}
