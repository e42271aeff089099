package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ListProtocolFilesActivity)
	w.RegisterActivity(a.ComputeProtocolIDActivity)
	w.RegisterActivity(a.GetProtocolActivity)
	w.RegisterActivity(a.ExtractTextActivity)
	w.RegisterActivity(a.NormalizeTextActivity)
	w.RegisterActivity(a.DetectSectionsActivity)
	w.RegisterActivity(a.ParseFieldsActivity)
	w.RegisterActivity(a.MatchRosterActivity)
	w.RegisterActivity(a.SaveDraftActivity)
	w.RegisterActivity(a.WriteProtocolArtifactsActivity)
	w.RegisterActivity(a.UpdateProtocolStatusActivity)
}
