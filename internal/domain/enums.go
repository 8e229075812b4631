package domain

type ElementKind string

const (
	KindOrder ElementKind = "order"
	KindGroup ElementKind = "group"
	KindLine  ElementKind = "line"
)

// ValidElementKinds is the canonical set of accepted element kind strings.
var ValidElementKinds = map[string]bool{
	"order": true, "group": true, "line": true,
}

type SchedulingStateType string

const (
	SchedulingNone      SchedulingStateType = "no_scheduled"
	SchedulingScheduled SchedulingStateType = "scheduled"
	SchedulingPartial   SchedulingStateType = "partially_scheduled"
	SchedulingPoint     SchedulingStateType = "scheduling_point"
)

type CriterionType string

const (
	CriterionWorker  CriterionType = "worker"
	CriterionMachine CriterionType = "machine"
	CriterionGeneric CriterionType = "generic"
)

// ValidCriterionTypes is the canonical set of accepted criterion type strings.
var ValidCriterionTypes = map[string]bool{
	"worker": true, "machine": true, "generic": true,
}
