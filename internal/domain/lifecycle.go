package domain

// jobTransitions is the only set of valid lifecycle edges.
var jobTransitions = map[JobStatus][]JobStatus{
	JobOpen:       {JobInProgress, JobCancelled},
	JobInProgress: {JobCompleted},
}

// CanTransition reports whether the lifecycle edge from -> to is valid.
func (s JobStatus) CanTransition(to JobStatus) bool {
	for _, next := range jobTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool { return len(jobTransitions[s]) == 0 }

// Editable reports whether job fields may still be edited by the owning client.
func (j Job) Editable() bool { return j.Status == JobOpen }

// Deletable reports whether the job may be deleted. An in-progress job has
// work underway; deleting it would orphan an active engagement.
func (j Job) Deletable() bool { return j.Status != JobInProgress }

// HiredConsistent checks the core invariant: the hired developer reference is
// set iff the job is in_progress or completed.
func (j Job) HiredConsistent() bool {
	hired := j.HiredDeveloperID != nil && *j.HiredDeveloperID != ""
	return hired == (j.Status == JobInProgress || j.Status == JobCompleted)
}

// Mutable reports whether the application may still be edited or withdrawn.
func (a Application) Mutable() bool { return a.Status == ApplicationPending }

// Participant reports whether the user may exchange messages about the job:
// only the owning client and the hired developer qualify.
func (j Job) Participant(userID string) bool {
	if j.ClientID == userID {
		return true
	}
	return j.HiredDeveloperID != nil && *j.HiredDeveloperID == userID
}
