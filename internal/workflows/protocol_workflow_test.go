package workflows

import (
	"context"
	"errors"
	"testing"

	"protoflow/internal/activities"
	"protoflow/internal/extract"
	"protoflow/internal/models"
	"protoflow/internal/session"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func registerProcessActivities(env *testsuite.TestWorkflowEnvironment) {
	registerActivityName(env, "ComputeProtocolIDActivity", func(context.Context, activities.ComputeProtocolIDInput) (activities.ComputeProtocolIDOutput, error) {
		return activities.ComputeProtocolIDOutput{}, nil
	})
	registerActivityName(env, "GetProtocolActivity", func(context.Context, activities.GetProtocolInput) (activities.GetProtocolOutput, error) {
		return activities.GetProtocolOutput{}, nil
	})
	registerActivityName(env, "UpdateProtocolStatusActivity", func(context.Context, activities.UpdateProtocolStatusInput) error { return nil })
	registerActivityName(env, "ExtractTextActivity", func(context.Context, activities.ExtractTextInput) (activities.ExtractTextOutput, error) {
		return activities.ExtractTextOutput{}, nil
	})
	registerActivityName(env, "NormalizeTextActivity", func(context.Context, activities.NormalizeTextInput) (activities.NormalizeTextOutput, error) {
		return activities.NormalizeTextOutput{}, nil
	})
	registerActivityName(env, "DetectSectionsActivity", func(context.Context, activities.DetectSectionsInput) (activities.DetectSectionsOutput, error) {
		return activities.DetectSectionsOutput{}, nil
	})
	registerActivityName(env, "ParseFieldsActivity", func(context.Context, activities.ParseFieldsInput) (activities.ParseFieldsOutput, error) {
		return activities.ParseFieldsOutput{}, nil
	})
	registerActivityName(env, "MatchRosterActivity", func(context.Context, activities.MatchRosterInput) (activities.MatchRosterOutput, error) {
		return activities.MatchRosterOutput{}, nil
	})
	registerActivityName(env, "SaveDraftActivity", func(context.Context, activities.SaveDraftInput) error { return nil })
	registerActivityName(env, "WriteProtocolArtifactsActivity", func(context.Context, activities.WriteProtocolArtifactsInput) error { return nil })
}

func testDraft(protocolID string) session.Draft {
	return session.Draft{
		ProtocolID:    protocolID,
		MeetingNumber: &extract.Field[int]{Value: 7, Confidence: 0.9, Method: extract.MethodPattern},
		Attendance:    []extract.AttendanceEntry{{Name: "רחל כהן", Present: true}},
	}
}

func testRaw(protocolID string) models.RawExtraction {
	return models.RawExtraction{ProtocolID: protocolID, Lines: []models.Line{{Page: 1, Text: "פרוטוקול ישיבת מליאה מס' 7"}}}
}

func TestProtocolProcessWorkflowSuccess(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ProtocolProcessWorkflow)
	registerProcessActivities(env)

	draft := testDraft("prot1")
	env.OnActivity("ComputeProtocolIDActivity", mock.Anything, activities.ComputeProtocolIDInput{Path: "/tmp/p.pdf"}).Return(activities.ComputeProtocolIDOutput{ProtocolID: "prot1"}, nil)
	env.OnActivity("GetProtocolActivity", mock.Anything, mock.Anything).Return(activities.GetProtocolOutput{}, nil)
	env.OnActivity("UpdateProtocolStatusActivity", mock.Anything, activities.UpdateProtocolStatusInput{ProtocolID: "prot1", Filename: "p.pdf", MeetingNo: "7", Status: "ready_for_review"}).Return(nil).Once()
	env.OnActivity("UpdateProtocolStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ExtractTextActivity", mock.Anything, activities.ExtractTextInput{ProtocolID: "prot1", Path: "/tmp/p.pdf"}).Return(activities.ExtractTextOutput{Raw: testRaw("prot1"), Pages: 1}, nil)
	env.OnActivity("NormalizeTextActivity", mock.Anything, mock.Anything).Return(activities.NormalizeTextOutput{Normalized: models.NormalizedText{ProtocolID: "prot1", Lines: testRaw("prot1").Lines}}, nil)
	env.OnActivity("DetectSectionsActivity", mock.Anything, mock.Anything).Return(activities.DetectSectionsOutput{}, nil)
	env.OnActivity("ParseFieldsActivity", mock.Anything, mock.Anything).Return(activities.ParseFieldsOutput{Draft: draft, FallbackCalls: 1}, nil)
	env.OnActivity("MatchRosterActivity", mock.Anything, mock.Anything).Return(activities.MatchRosterOutput{Draft: draft, Matched: 1}, nil)
	env.OnActivity("SaveDraftActivity", mock.Anything, activities.SaveDraftInput{ProtocolID: "prot1", Draft: draft}).Return(nil)
	env.OnActivity("WriteProtocolArtifactsActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(ProtocolProcessWorkflow, ProtocolProcessInput{Path: "/tmp/p.pdf"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "ready_for_review", out)
	env.AssertExpectations(t)
}

func TestProtocolProcessWorkflowNoTextFailsGracefully(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ProtocolProcessWorkflow)
	registerProcessActivities(env)

	env.OnActivity("ComputeProtocolIDActivity", mock.Anything, mock.Anything).Return(activities.ComputeProtocolIDOutput{ProtocolID: "prot1"}, nil)
	env.OnActivity("GetProtocolActivity", mock.Anything, mock.Anything).Return(activities.GetProtocolOutput{}, nil)
	env.OnActivity("UpdateProtocolStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ExtractTextActivity", mock.Anything, mock.Anything).Return(activities.ExtractTextOutput{}, errors.New("no extractable text found in protocol file"))

	env.ExecuteWorkflow(ProtocolProcessWorkflow, ProtocolProcessInput{Path: "/tmp/p.pdf"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "failed", out)
}

func TestProtocolProcessWorkflowSkipsReviewedProtocol(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ProtocolProcessWorkflow)
	registerProcessActivities(env)

	env.OnActivity("ComputeProtocolIDActivity", mock.Anything, mock.Anything).Return(activities.ComputeProtocolIDOutput{ProtocolID: "prot1"}, nil)
	env.OnActivity("GetProtocolActivity", mock.Anything, mock.Anything).Return(activities.GetProtocolOutput{Found: true, Status: "ready_for_review"}, nil)

	env.ExecuteWorkflow(ProtocolProcessWorkflow, ProtocolProcessInput{Path: "/tmp/p.pdf"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "skipped", out)
}

func TestProtocolProcessWorkflowRetriesParseAfterRateError(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ProtocolProcessWorkflow)
	registerProcessActivities(env)

	draft := testDraft("prot1")
	env.OnActivity("ComputeProtocolIDActivity", mock.Anything, mock.Anything).Return(activities.ComputeProtocolIDOutput{ProtocolID: "prot1"}, nil)
	env.OnActivity("GetProtocolActivity", mock.Anything, mock.Anything).Return(activities.GetProtocolOutput{}, nil)
	env.OnActivity("UpdateProtocolStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ExtractTextActivity", mock.Anything, mock.Anything).Return(activities.ExtractTextOutput{Raw: testRaw("prot1"), Pages: 1}, nil)
	env.OnActivity("NormalizeTextActivity", mock.Anything, mock.Anything).Return(activities.NormalizeTextOutput{Normalized: models.NormalizedText{ProtocolID: "prot1", Lines: testRaw("prot1").Lines}}, nil)
	env.OnActivity("DetectSectionsActivity", mock.Anything, mock.Anything).Return(activities.DetectSectionsOutput{}, nil)
	env.OnActivity("ParseFieldsActivity", mock.Anything, mock.Anything).Return(activities.ParseFieldsOutput{Draft: draft, FallbackErrorType: "rate"}, nil).Once()
	env.OnActivity("ParseFieldsActivity", mock.Anything, mock.Anything).Return(activities.ParseFieldsOutput{Draft: draft}, nil).Once()
	env.OnActivity("MatchRosterActivity", mock.Anything, mock.Anything).Return(activities.MatchRosterOutput{Draft: draft, Matched: 1}, nil)
	env.OnActivity("SaveDraftActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("WriteProtocolArtifactsActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(ProtocolProcessWorkflow, ProtocolProcessInput{Path: "/tmp/p.pdf"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "ready_for_review", out)
	env.AssertExpectations(t)
}

func TestProtocolProcessWorkflowKeepsDegradedDraftOnQuota(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ProtocolProcessWorkflow)
	registerProcessActivities(env)

	draft := testDraft("prot1")
	env.OnActivity("ComputeProtocolIDActivity", mock.Anything, mock.Anything).Return(activities.ComputeProtocolIDOutput{ProtocolID: "prot1"}, nil)
	env.OnActivity("GetProtocolActivity", mock.Anything, mock.Anything).Return(activities.GetProtocolOutput{}, nil)
	env.OnActivity("UpdateProtocolStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ExtractTextActivity", mock.Anything, mock.Anything).Return(activities.ExtractTextOutput{Raw: testRaw("prot1"), Pages: 1}, nil)
	env.OnActivity("NormalizeTextActivity", mock.Anything, mock.Anything).Return(activities.NormalizeTextOutput{Normalized: models.NormalizedText{ProtocolID: "prot1", Lines: testRaw("prot1").Lines}}, nil)
	env.OnActivity("DetectSectionsActivity", mock.Anything, mock.Anything).Return(activities.DetectSectionsOutput{}, nil)
	env.OnActivity("ParseFieldsActivity", mock.Anything, mock.Anything).Return(activities.ParseFieldsOutput{Draft: draft, FallbackErrorType: "quota"}, nil).Once()
	env.OnActivity("MatchRosterActivity", mock.Anything, mock.Anything).Return(activities.MatchRosterOutput{Draft: draft}, nil)
	env.OnActivity("SaveDraftActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("WriteProtocolArtifactsActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(ProtocolProcessWorkflow, ProtocolProcessInput{Path: "/tmp/p.pdf"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "ready_for_review", out)
	env.AssertExpectations(t)
}

func TestProtocolBatchWorkflowProcessesBacklogInWaves(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ProtocolBatchWorkflow)
	env.RegisterWorkflow(ProtocolProcessWorkflow)
	registerProcessActivities(env)
	registerActivityName(env, "ListProtocolFilesActivity", func(context.Context, activities.ListProtocolFilesInput) (activities.ListProtocolFilesOutput, error) {
		return activities.ListProtocolFilesOutput{}, nil
	})

	env.OnActivity("ListProtocolFilesActivity", mock.Anything, mock.Anything).Return(activities.ListProtocolFilesOutput{Paths: []string{"/tmp/a.pdf", "/tmp/b.pdf"}}, nil)
	env.OnActivity("ComputeProtocolIDActivity", mock.Anything, activities.ComputeProtocolIDInput{Path: "/tmp/a.pdf"}).Return(activities.ComputeProtocolIDOutput{ProtocolID: "prota"}, nil)
	env.OnActivity("ComputeProtocolIDActivity", mock.Anything, activities.ComputeProtocolIDInput{Path: "/tmp/b.pdf"}).Return(activities.ComputeProtocolIDOutput{ProtocolID: "protb"}, nil)
	env.OnActivity("GetProtocolActivity", mock.Anything, mock.Anything).Return(activities.GetProtocolOutput{}, nil)
	env.OnActivity("UpdateProtocolStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ExtractTextActivity", mock.Anything, mock.Anything).Return(activities.ExtractTextOutput{Raw: testRaw("p"), Pages: 1}, nil)
	env.OnActivity("NormalizeTextActivity", mock.Anything, mock.Anything).Return(activities.NormalizeTextOutput{Normalized: models.NormalizedText{Lines: testRaw("p").Lines}}, nil)
	env.OnActivity("DetectSectionsActivity", mock.Anything, mock.Anything).Return(activities.DetectSectionsOutput{}, nil)
	env.OnActivity("ParseFieldsActivity", mock.Anything, mock.Anything).Return(activities.ParseFieldsOutput{Draft: testDraft("p")}, nil)
	env.OnActivity("MatchRosterActivity", mock.Anything, mock.Anything).Return(activities.MatchRosterOutput{Draft: testDraft("p")}, nil)
	env.OnActivity("SaveDraftActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("WriteProtocolArtifactsActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(ProtocolBatchWorkflow, ProtocolBatchInput{MaxConcurrentChildren: 1})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "completed", out)

	val, err := env.QueryWorkflow(QueryGetProgress)
	require.NoError(t, err)
	var progress ProtocolBatchProgress
	require.NoError(t, val.Get(&progress))
	require.Equal(t, 2, progress.Total)
	require.Equal(t, 2, progress.Done)
	require.Equal(t, 0, progress.Failed)
	require.Equal(t, "ready_for_review", progress.PerProtocol["/tmp/a.pdf"])
}
