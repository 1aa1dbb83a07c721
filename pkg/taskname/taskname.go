package taskname

const (
	// Reconciliation follow-ups
	CommissionEnsure    = "commission:ensure"
	MembershipProvision = "membership:provision"
)

// Queues and their asynq priority weights.
const (
	QueueReconcile = "reconcile"
	QueueDefault   = "default"
)

var QueueWeights = map[string]int{
	QueueReconcile: 10,
	QueueDefault:   3,
}
