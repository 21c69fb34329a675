package domain

// JobStep is the lifecycle stage of a transcription job.
type JobStep string

const (
	// StepNotReported is assigned client-side when the backend reports no step.
	StepNotReported JobStep = "notReported"
	// StepAborting is assigned client-side while an abort request is in flight.
	StepAborting         JobStep = "aborting"
	StepFailed           JobStep = "failed"
	StepNotQueued        JobStep = "notQueued"
	StepPendingRunner    JobStep = "pendingRunner"
	StepRunnerAssigned   JobStep = "runnerAssigned"
	StepRunnerInProgress JobStep = "runnerInProgress"
	StepSuccess          JobStep = "success"
	StepDownloaded       JobStep = "downloaded"
)

// FilterSteps is the cycle order for the jobs list step filter.
var FilterSteps = []JobStep{"", StepRunnerInProgress, StepPendingRunner, StepSuccess, StepDownloaded, StepFailed}

// Finished reports whether no further progress is expected for the step.
func (s JobStep) Finished() bool {
	switch s {
	case StepFailed, StepSuccess, StepDownloaded:
		return true
	}
	return false
}

// JobStatus is the progress report attached to a job.
type JobStatus struct {
	Step     JobStep  `json:"step,omitempty"`
	Runner   *int     `json:"runner,omitempty"`
	Progress *float64 `json:"progress,omitempty"`
}

// Job is a transcription job as listed by the backend.
type Job struct {
	JobID    *int       `json:"jobId,omitempty"`
	FileName string     `json:"fileName,omitempty"`
	Model    string     `json:"model,omitempty"`
	Language string     `json:"language,omitempty"`
	ErrorMsg string     `json:"error_msg,omitempty"`
	Status   *JobStatus `json:"status,omitempty"`
}

// Step returns the job's step, or StepNotReported when the backend sent none.
func (j Job) Step() JobStep {
	if j.Status == nil || j.Status.Step == "" {
		return StepNotReported
	}
	return j.Status.Step
}

// ID returns the job ID, or -1 when the backend omitted it.
func (j Job) ID() int {
	if j.JobID == nil {
		return -1
	}
	return *j.JobID
}

// Models offered when submitting a job.
var Models = []string{"small", "medium", "large-v3"}

// Languages offered when submitting a job. "auto" lets the runner detect it.
var Languages = []string{"auto", "en", "de", "fr", "es", "it", "nl"}
