package models

type ProjectStatus string

const (
	ProjectPending   ProjectStatus = "Pending"
	ProjectActive    ProjectStatus = "Active"
	ProjectCompleted ProjectStatus = "Completed"
	ProjectCancelled ProjectStatus = "Cancelled"
)

type OfferStatus string

const (
	OfferAvailable   OfferStatus = "AVAILABLE"
	OfferUnavailable OfferStatus = "UNAVAILABLE"
	OfferArchived    OfferStatus = "ARCHIVED"
)

type TaskStatus string

const (
	TaskOpen       TaskStatus = "OPEN"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

// Transition outcomes. Same-status writes are always TransitionOK.
type Transition int

const (
	TransitionOK Transition = iota
	TransitionUnknown
	TransitionInvalid
)

var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectPending:   {ProjectActive, ProjectCompleted, ProjectCancelled},
	ProjectActive:    {ProjectPending, ProjectCompleted, ProjectCancelled},
	ProjectCompleted: nil,
	ProjectCancelled: {ProjectPending},
}

var offerTransitions = map[OfferStatus][]OfferStatus{
	OfferAvailable:   {OfferUnavailable, OfferArchived},
	OfferUnavailable: {OfferAvailable, OfferArchived},
	OfferArchived:    nil,
}

var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskOpen:       {TaskInProgress, TaskDone},
	TaskInProgress: {TaskOpen, TaskDone},
	TaskDone:       {TaskOpen},
}

func transition[S comparable](table map[S][]S, from, to S) Transition {
	if _, ok := table[to]; !ok {
		return TransitionUnknown
	}
	if from == to {
		return TransitionOK
	}
	for _, next := range table[from] {
		if next == to {
			return TransitionOK
		}
	}
	return TransitionInvalid
}

func (s ProjectStatus) Valid() bool {
	_, ok := projectTransitions[s]
	return ok
}

func (s OfferStatus) Valid() bool {
	_, ok := offerTransitions[s]
	return ok
}

func (s TaskStatus) Valid() bool {
	_, ok := taskTransitions[s]
	return ok
}

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (s ProjectStatus) TransitionTo(next ProjectStatus) Transition {
	return transition(projectTransitions, s, next)
}

func (s OfferStatus) TransitionTo(next OfferStatus) Transition {
	return transition(offerTransitions, s, next)
}

func (s TaskStatus) TransitionTo(next TaskStatus) Transition {
	return transition(taskTransitions, s, next)
}
