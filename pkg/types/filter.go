package types

// TimeRange bounds a query to [StartMillis, EndMillis], inclusive.
type TimeRange struct {
	StartMillis int64
	EndMillis   int64
}

// Filter is a conjunction of optional predicates. Zero values mean
// "no constraint"; an empty filter matches every event.
//
// The variant-specific predicates (TaskType, Provider, ModelName,
// IsLocal) exclude events whose variant does not carry the field: a
// Provider filter matches no audit events. Inherited behavior, kept
// deliberately so existing dashboards keep their semantics.
type Filter struct {
	EventType string
	TaskType  string
	Provider  string
	ModelName string
	IsLocal   *bool
	TimeRange *TimeRange
	Limit     int
}

// Matches applies all predicates by conjunction.
func (f *Filter) Matches(ev *Event) bool {
	if f.EventType != "" && ev.EventType != f.EventType {
		return false
	}
	if f.TaskType != "" {
		v, ok := ev.TaskType()
		if !ok || v != f.TaskType {
			return false
		}
	}
	if f.Provider != "" {
		v, ok := ev.Provider()
		if !ok || v != f.Provider {
			return false
		}
	}
	if f.ModelName != "" {
		v, ok := ev.ModelName()
		if !ok || v != f.ModelName {
			return false
		}
	}
	if f.IsLocal != nil {
		v, ok := ev.IsLocal()
		if !ok || v != *f.IsLocal {
			return false
		}
	}
	if f.TimeRange != nil {
		if ev.TimestampMillis < f.TimeRange.StartMillis || ev.TimestampMillis > f.TimeRange.EndMillis {
			return false
		}
	}
	return true
}

// PredicateFields names the predicates set on the filter, for usage stats.
func (f *Filter) PredicateFields() []string {
	var fields []string
	if f.EventType != "" {
		fields = append(fields, "eventType")
	}
	if f.TaskType != "" {
		fields = append(fields, "taskType")
	}
	if f.Provider != "" {
		fields = append(fields, "provider")
	}
	if f.ModelName != "" {
		fields = append(fields, "modelName")
	}
	if f.IsLocal != nil {
		fields = append(fields, "isLocal")
	}
	if f.TimeRange != nil {
		fields = append(fields, "timeRange")
	}
	return fields
}
