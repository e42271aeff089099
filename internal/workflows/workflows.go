package workflows

import (
	"strconv"
	"strings"
	"time"

	"protoflow/internal/activities"
	"protoflow/internal/providers"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	QueryGetProtocolStatus = "GetProtocolStatus"
	QueryGetProgress       = "GetProgress"
)

// ProtocolBatchWorkflow walks the input directory and processes every
// protocol file in bounded waves of child workflows. It only produces
// draft extractions; review sessions never run under it.
func ProtocolBatchWorkflow(ctx workflow.Context, input ProtocolBatchInput) (string, error) {
	progress := ProtocolBatchProgress{
		PerProtocol:   map[string]string{},
		ChildWorkflow: map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetProgress, func() (ProtocolBatchProgress, error) {
		return progress, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	var listOut activities.ListProtocolFilesOutput
	if err := workflow.ExecuteActivity(ctx, "ListProtocolFilesActivity", activities.ListProtocolFilesInput{InputDir: input.InputDir}).Get(ctx, &listOut); err != nil {
		return "", err
	}
	paths := listOut.Paths
	progress.Total = len(paths)
	maxChildren := input.MaxConcurrentChildren
	if maxChildren <= 0 {
		maxChildren = 3
	}

	for i := 0; i < len(paths); i += maxChildren {
		end := i + maxChildren
		if end > len(paths) {
			end = len(paths)
		}
		futures := make([]workflow.ChildWorkflowFuture, 0, end-i)
		childPaths := make([]string, 0, end-i)
		for _, path := range paths[i:end] {
			progress.PerProtocol[path] = "processing"
			workflowID := "protocol-" + sanitizeID(filepathBase(path))
			cwo := workflow.ChildWorkflowOptions{WorkflowID: workflowID}
			childCtx := workflow.WithChildOptions(ctx, cwo)
			f := workflow.ExecuteChildWorkflow(childCtx, ProtocolProcessWorkflow, ProtocolProcessInput{
				Path:       path,
				Force:      input.Force,
				DisableLLM: input.DisableLLM,
			})
			futures = append(futures, f)
			childPaths = append(childPaths, path)
			progress.ChildWorkflow[path] = workflowID
		}

		for idx, f := range futures {
			var childStatus string
			err := f.Get(ctx, &childStatus)
			path := childPaths[idx]
			if err != nil {
				progress.Failed++
				progress.Done++
				progress.PerProtocol[path] = "failed"
				continue
			}
			switch childStatus {
			case "failed":
				progress.Failed++
			case "skipped":
				progress.Skipped++
			}
			progress.Done++
			progress.PerProtocol[path] = childStatus
		}
	}
	return "completed", nil
}

// ProtocolProcessWorkflow takes one protocol file from raw bytes to a
// stored draft extraction with status ready_for_review.
func ProtocolProcessWorkflow(ctx workflow.Context, input ProtocolProcessInput) (string, error) {
	status := ProtocolStatus{
		Path:        input.Path,
		CurrentStep: "init",
		Status:      "processing",
		RetryCounts: map[string]int{},
		Steps:       map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetProtocolStatus, func() (ProtocolStatus, error) {
		return status, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	filename := filepathBase(input.Path)

	status.CurrentStep = "compute_protocol_id"
	status.Steps[status.CurrentStep] = "processing"
	var computeOut activities.ComputeProtocolIDOutput
	if err := workflow.ExecuteActivity(ctx, "ComputeProtocolIDActivity", activities.ComputeProtocolIDInput{Path: input.Path}).Get(ctx, &computeOut); err != nil {
		return "", err
	}
	pid := computeOut.ProtocolID
	status.ProtocolID = pid
	status.Steps[status.CurrentStep] = "done"

	// A protocol that already reached review or got committed is left
	// alone unless forced; regenerating its draft would reopen or clobber
	// finished review work.
	if !input.Force {
		var known activities.GetProtocolOutput
		if err := workflow.ExecuteActivity(ctx, "GetProtocolActivity", activities.GetProtocolInput{ProtocolID: pid}).Get(ctx, &known); err != nil {
			return "", err
		}
		if known.Found && (known.Status == "ready_for_review" || known.Status == "committed") {
			status.Status = "skipped"
			return status.Status, nil
		}
	}

	_ = workflow.ExecuteActivity(ctx, "UpdateProtocolStatusActivity", activities.UpdateProtocolStatusInput{ProtocolID: pid, Filename: filename, Status: "processing"})

	status.CurrentStep = "extract_text"
	status.Steps[status.CurrentStep] = "processing"
	var textOut activities.ExtractTextOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractTextActivity", activities.ExtractTextInput{ProtocolID: pid, Path: input.Path}).Get(ctx, &textOut); err != nil {
		if isNoTextError(err) {
			status.Status = "failed"
			status.FailReason = "no extractable text found in protocol file"
			status.Steps[status.CurrentStep] = "failed"
			_ = workflow.ExecuteActivity(ctx, "UpdateProtocolStatusActivity", activities.UpdateProtocolStatusInput{ProtocolID: pid, Filename: filename, Status: "failed", FailReason: status.FailReason}).Get(ctx, nil)
			return status.Status, nil
		}
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "normalize_text"
	status.Steps[status.CurrentStep] = "processing"
	var normOut activities.NormalizeTextOutput
	if err := workflow.ExecuteActivity(ctx, "NormalizeTextActivity", activities.NormalizeTextInput{Raw: textOut.Raw}).Get(ctx, &normOut); err != nil {
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "detect_sections"
	status.Steps[status.CurrentStep] = "processing"
	var sectionsOut activities.DetectSectionsOutput
	if err := workflow.ExecuteActivity(ctx, "DetectSectionsActivity", activities.DetectSectionsInput{Text: normOut.Normalized.Plain()}).Get(ctx, &sectionsOut); err != nil {
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "parse_fields"
	status.Steps[status.CurrentStep] = "processing"
	parseOut, err := parseFieldsWithRecovery(ctx, activities.ParseFieldsInput{
		ProtocolID: pid,
		Normalized: normOut.Normalized,
		Sections:   sectionsOut.Sections,
		DisableLLM: input.DisableLLM,
	}, status.RetryCounts)
	if err != nil {
		return "", err
	}
	status.LLMErrorType = parseOut.FallbackErrorType
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "match_roster"
	status.Steps[status.CurrentStep] = "processing"
	var matchOut activities.MatchRosterOutput
	if err := workflow.ExecuteActivity(ctx, "MatchRosterActivity", activities.MatchRosterInput{Draft: parseOut.Draft}).Get(ctx, &matchOut); err != nil {
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "save_draft"
	status.Steps[status.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "SaveDraftActivity", activities.SaveDraftInput{ProtocolID: pid, Draft: matchOut.Draft}).Get(ctx, nil); err != nil {
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "write_artifacts"
	status.Steps[status.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "WriteProtocolArtifactsActivity", activities.WriteProtocolArtifactsInput{
		ProtocolID:     pid,
		Draft:          matchOut.Draft,
		NormalizedText: normOut.Normalized.Plain(),
		Marks:          normOut.Normalized.Marks,
		ProcessingLog: map[string]any{
			"status":               "ready_for_review",
			"steps":                status.Steps,
			"pages":                textOut.Pages,
			"document_reversed":    matchOut.Draft.Reversed,
			"sections_confidence":  sectionsOut.Sections.Confidence,
			"attendance_matched":   matchOut.Matched,
			"attendance_unmatched": matchOut.Unmatched,
			"llm_fallback_calls":   parseOut.FallbackCalls,
			"llm_error_type":       parseOut.FallbackErrorType,
			"generated_at":         workflow.Now(ctx),
		},
	}).Get(ctx, nil); err != nil {
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"

	meetingNo := ""
	if matchOut.Draft.MeetingNumber != nil {
		meetingNo = strconv.Itoa(matchOut.Draft.MeetingNumber.Value)
	}
	status.CurrentStep = "mark_ready"
	status.Steps[status.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "UpdateProtocolStatusActivity", activities.UpdateProtocolStatusInput{ProtocolID: pid, Filename: filename, MeetingNo: meetingNo, Status: "ready_for_review"}).Get(ctx, nil); err != nil {
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"
	status.CurrentStep = "done"
	status.Status = "ready_for_review"
	return status.Status, nil
}

// parseFieldsWithRecovery re-runs field parsing when the LLM fallback came
// back degraded with a recoverable error class. Sleeps sit just above the
// provider manager's cooldown windows so a re-run lands after the cooldowns
// expire and actually reaches the providers again. Quota and context
// failures are not worth a re-run: the draft stands on pattern output and
// the reviewer fills the gaps.
func parseFieldsWithRecovery(ctx workflow.Context, in activities.ParseFieldsInput, retryCounts map[string]int) (activities.ParseFieldsOutput, error) {
	var out activities.ParseFieldsOutput
	for {
		if err := workflow.ExecuteActivity(ctx, "ParseFieldsActivity", in).Get(ctx, &out); err != nil {
			return activities.ParseFieldsOutput{}, err
		}
		if out.FallbackErrorType == "" || in.DisableLLM {
			return out, nil
		}
		retryCounts["parse_fields"]++
		n := retryCounts["parse_fields"]
		switch providers.ErrorType(out.FallbackErrorType) {
		case providers.ErrorRate:
			if n <= 2 {
				workflow.Sleep(ctx, time.Duration(n)*31*time.Second)
				continue
			}
		case providers.ErrorTransient:
			if n <= 2 {
				workflow.Sleep(ctx, time.Duration(n*6)*time.Second)
				continue
			}
		case providers.ErrorPermanent:
			if n <= 1 {
				workflow.Sleep(ctx, time.Minute+time.Second)
				continue
			}
		}
		return out, nil
	}
}

func isNoTextError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "no extractable text")
}

func filepathBase(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) == 0 {
		return path
	}
	return parts[len(parts)-1]
}

func sanitizeID(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.ReplaceAll(s, "/", "-")
	return s
}
