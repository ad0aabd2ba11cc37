package tools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	gogithub "github.com/google/go-github/v60/github"
	"github.com/mark3labs/mcp-go/mcp"

	gh "github.com/theapemachine/ghops/pkg/github"
)

type ActionsTool struct {
	gateway *gh.Gateway
}

func NewActionsTool(gateway *gh.Gateway) *ActionsTool {
	return &ActionsTool{gateway: gateway}
}

func (at *ActionsTool) Tool() mcp.Tool {
	return mcp.NewTool(
		"manage_actions",
		mcp.WithDescription("Manage GitHub Actions: workflows, workflow runs, and artifacts."),
		mcp.WithString("operation",
			mcp.Required(),
			mcp.Description("Actions operation to perform"),
			mcp.Enum(
				"list_workflows", "get_workflow", "trigger_workflow",
				"list_runs", "get_run", "cancel_run", "rerun_run",
				"list_artifacts", "get_artifact", "delete_artifact",
			),
		),
		mcp.WithString("owner", mcp.Description("Repository owner (required for every operation)")),
		mcp.WithString("repo", mcp.Description("Repository name (required for every operation)")),
		mcp.WithString("workflow_id", mcp.Description("Workflow identifier: numeric ID or workflow file name (required for get_workflow and trigger_workflow)")),
		mcp.WithString("ref", mcp.Description("Git reference for trigger_workflow (defaults to main)")),
		mcp.WithObject("inputs", mcp.Description("Workflow dispatch inputs for trigger_workflow")),
		mcp.WithNumber("run_id", mcp.Description("Workflow run identifier (required for get_run, cancel_run, rerun_run, list_artifacts)")),
		mcp.WithNumber("artifact_id", mcp.Description("Artifact identifier (required for get_artifact and delete_artifact)")),
		mcp.WithString("branch", mcp.Description("Branch filter for list_runs")),
		mcp.WithString("status", mcp.Description("Status filter for list_runs")),
		mcp.WithNumber("page", mcp.Description("Page number for list results")),
		mcp.WithNumber("per_page", mcp.Description("Results per page for list results")),
		mcp.WithString("token", mcp.Description("GitHub token (optional, falls back to config or GITHUB_TOKEN)")),
	)
}

type actionsParams struct {
	operation  string
	token      string
	owner      string
	repo       string
	workflowID string
	ref        string
	inputs     map[string]any
	runID      int64
	artifactID int64
	branch     string
	status     string
	page       int
	perPage    int
}

func parseActionsParams(args map[string]any) actionsParams {
	params := actionsParams{
		operation:  stringArg(args, "operation"),
		token:      stringArg(args, "token"),
		owner:      stringArg(args, "owner"),
		repo:       stringArg(args, "repo"),
		workflowID: stringArg(args, "workflow_id"),
		ref:        stringArg(args, "ref"),
		inputs:     objectArg(args, "inputs"),
		runID:      int64Arg(args, "run_id"),
		artifactID: int64Arg(args, "artifact_id"),
		branch:     stringArg(args, "branch"),
		status:     stringArg(args, "status"),
		page:       intArg(args, "page"),
		perPage:    intArg(args, "per_page"),
	}

	// Workflow identifiers may arrive as JSON numbers.
	if params.workflowID == "" {
		if id := int64Arg(args, "workflow_id"); id != 0 {
			params.workflowID = strconv.FormatInt(id, 10)
		}
	}

	return params
}

func (params actionsParams) validate() error {
	switch params.operation {
	case "list_workflows", "list_runs":
		return required(str("owner", params.owner), str("repo", params.repo))
	case "get_workflow", "trigger_workflow":
		return required(
			str("owner", params.owner),
			str("repo", params.repo),
			str("workflow_id", params.workflowID),
		)
	case "get_run", "cancel_run", "rerun_run", "list_artifacts":
		return required(
			str("owner", params.owner),
			str("repo", params.repo),
			num("run_id", params.runID),
		)
	case "get_artifact", "delete_artifact":
		return required(
			str("owner", params.owner),
			str("repo", params.repo),
			num("artifact_id", params.artifactID),
		)
	default:
		return fmt.Errorf("unknown operation %q", params.operation)
	}
}

func (at *ActionsTool) Handle(
	ctx context.Context, req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	params := parseActionsParams(req.GetArguments())
	log.Info("manage_actions executing", "operation", params.operation)

	if err := params.validate(); err != nil {
		return invalidInput(err), nil
	}

	token, err := gh.ResolveToken(params.token)
	if err != nil {
		return errorEnvelope(err), nil
	}

	defer at.gateway.Disconnect()

	if err := at.gateway.Connect(ctx, token); err != nil {
		return errorEnvelope(err), nil
	}

	client, err := at.gateway.Client(token)
	if err != nil {
		return errorEnvelope(err), nil
	}

	payload, err := at.dispatch(ctx, client, params)
	if err != nil {
		return errorEnvelope(gh.Classify(err)), nil
	}

	return successEnvelope("actions", params.operation, payload), nil
}

func (at *ActionsTool) dispatch(
	ctx context.Context, client *gogithub.Client, params actionsParams,
) (any, error) {
	switch params.operation {
	case "list_workflows":
		workflows, _, err := client.Actions.ListWorkflows(ctx, params.owner, params.repo,
			&gogithub.ListOptions{Page: params.page, PerPage: params.perPage})
		return workflows, err

	case "get_workflow":
		if id, numeric := workflowNumericID(params.workflowID); numeric {
			workflow, _, err := client.Actions.GetWorkflowByID(ctx, params.owner, params.repo, id)
			return workflow, err
		}

		workflow, _, err := client.Actions.GetWorkflowByFileName(
			ctx, params.owner, params.repo, params.workflowID,
		)
		return workflow, err

	case "trigger_workflow":
		ref := params.ref
		if ref == "" {
			// Falls back to the literal "main", not the repository's actual
			// default branch. TODO: resolve the default branch the way branch
			// create does.
			ref = "main"
		}

		event := gogithub.CreateWorkflowDispatchEventRequest{
			Ref:    ref,
			Inputs: params.inputs,
		}

		var err error
		if id, numeric := workflowNumericID(params.workflowID); numeric {
			_, err = client.Actions.CreateWorkflowDispatchEventByID(
				ctx, params.owner, params.repo, id, event,
			)
		} else {
			_, err = client.Actions.CreateWorkflowDispatchEventByFileName(
				ctx, params.owner, params.repo, params.workflowID, event,
			)
		}
		if err != nil && !gh.IsAccepted(err) {
			return nil, err
		}

		return ack(
			"status", "workflow dispatched",
			"workflow_id", params.workflowID,
			"ref", ref,
		), nil

	case "list_runs":
		opts := &gogithub.ListWorkflowRunsOptions{
			Branch:      params.branch,
			Status:      params.status,
			ListOptions: gogithub.ListOptions{Page: params.page, PerPage: params.perPage},
		}

		if id, numeric := workflowNumericID(params.workflowID); numeric {
			runs, _, err := client.Actions.ListWorkflowRunsByID(
				ctx, params.owner, params.repo, id, opts,
			)
			return runs, err
		}

		runs, _, err := client.Actions.ListRepositoryWorkflowRuns(
			ctx, params.owner, params.repo, opts,
		)
		return runs, err

	case "get_run":
		run, _, err := client.Actions.GetWorkflowRunByID(
			ctx, params.owner, params.repo, params.runID,
		)
		return run, err

	case "cancel_run":
		if _, err := client.Actions.CancelWorkflowRunByID(
			ctx, params.owner, params.repo, params.runID,
		); err != nil && !gh.IsAccepted(err) {
			return nil, err
		}
		return ack(
			"status", "cancellation requested",
			"run_id", strconv.FormatInt(params.runID, 10),
		), nil

	case "rerun_run":
		if _, err := client.Actions.RerunWorkflowByID(
			ctx, params.owner, params.repo, params.runID,
		); err != nil && !gh.IsAccepted(err) {
			return nil, err
		}
		return ack(
			"status", "rerun requested",
			"run_id", strconv.FormatInt(params.runID, 10),
		), nil

	case "list_artifacts":
		artifacts, _, err := client.Actions.ListWorkflowRunArtifacts(
			ctx, params.owner, params.repo, params.runID,
			&gogithub.ListOptions{Page: params.page, PerPage: params.perPage},
		)
		return artifacts, err

	case "get_artifact":
		artifact, _, err := client.Actions.GetArtifact(
			ctx, params.owner, params.repo, params.artifactID,
		)
		return artifact, err

	case "delete_artifact":
		if _, err := client.Actions.DeleteArtifact(
			ctx, params.owner, params.repo, params.artifactID,
		); err != nil {
			return nil, err
		}
		return ack(
			"status", "deleted",
			"artifact_id", strconv.FormatInt(params.artifactID, 10),
		), nil
	}

	return nil, fmt.Errorf("unknown operation %q", params.operation)
}

func workflowNumericID(workflowID string) (int64, bool) {
	id, err := strconv.ParseInt(workflowID, 10, 64)
	return id, err == nil
}
